package train

import (
	"go-ml.dev/pkg/nnet/fu"
)

/*
StopPolicy decides after each epoch whether the session has converged.
It sees the score history so far, one entry per completed epoch, higher
is better. A nil policy never converges.
*/
type StopPolicy interface {
	Converged(scores []float64) bool
}

type patience int

func (k patience) Converged(scores []float64) bool {
	if len(scores) <= int(k) {
		return false
	}
	tail := scores[len(scores)-int(k)-1:]
	return fu.Indmaxd(tail) == 0
}

/*
Patience stops the session when the score has not improved for k
consecutive epochs
*/
func Patience(k int) StopPolicy {
	return patience(fu.Maxi(k, 1))
}
