package fu

func Meand(a []float64) float64 {
	var c float64
	for _, x := range a {
		c += x
	}
	return c / float64(len(a))
}

func Msed(a, b []float64) float64 {
	var c float64
	for i, x := range a {
		q := x - b[i]
		c += q * q
	}
	return c / float64(len(a))
}

func Maxd(a []float64) float64 {
	r := a[0]
	for _, x := range a[1:] {
		if x > r {
			r = x
		}
	}
	return r
}

func Indmaxd(a []float64) int {
	j := 0
	for i, x := range a {
		if x > a[j] {
			j = i
		}
	}
	return j
}

func Mini(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func Maxi(a, b int) int {
	if a > b {
		return a
	}
	return b
}

/*
Fnzi returns the first non-zero integer value
*/
func Fnzi(a ...int) int {
	for _, x := range a {
		if x != 0 {
			return x
		}
	}
	return 0
}

/*
Fnzd returns the first non-zero float value
*/
func Fnzd(a ...float64) float64 {
	for _, x := range a {
		if x != 0 {
			return x
		}
	}
	return 0
}
