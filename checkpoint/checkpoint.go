/*
Package checkpoint persists network parameter snapshots as xz-compressed
gob streams
*/
package checkpoint

import (
	"encoding/gob"
	"io"
	"os"
	"path/filepath"

	"github.com/ulikunitz/xz"
	"go-ml.dev/pkg/iokit"
	"go-ml.dev/pkg/nnet/nn"
	"go-ml.dev/pkg/zorros"
)

/*
Encode writes a compressed snapshot to the stream
*/
func Encode(w io.Writer, s nn.Snapshot) error {
	zw, err := xz.NewWriter(w)
	if err != nil {
		return zorros.Trace(err)
	}
	if err = gob.NewEncoder(zw).Encode(s); err != nil {
		return zorros.Trace(err)
	}
	if err = zw.Close(); err != nil {
		return zorros.Trace(err)
	}
	return nil
}

/*
Decode reads a compressed snapshot from the stream
*/
func Decode(r io.Reader) (s nn.Snapshot, err error) {
	zr, err := xz.NewReader(r)
	if err != nil {
		return s, zorros.Trace(err)
	}
	if err = gob.NewDecoder(zr).Decode(&s); err != nil {
		return s, zorros.Trace(err)
	}
	return
}

/*
Save encodes the snapshot into the output, committing on success
*/
func Save(out iokit.Output, s nn.Snapshot) error {
	wh, err := out.Create()
	if err != nil {
		return zorros.Trace(err)
	}
	defer wh.End()
	if err = Encode(wh, s); err != nil {
		return err
	}
	if err = wh.Commit(); err != nil {
		return zorros.Trace(err)
	}
	return nil
}

/*
Load reads a snapshot from a file written by Save
*/
func Load(path string) (nn.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nn.Snapshot{}, zorros.Trace(err)
	}
	defer f.Close()
	return Decode(f)
}

/*
Path resolves a relative model file name to the models cache
*/
func Path(s string) string {
	if filepath.IsAbs(s) {
		return s
	}
	return iokit.CacheFile(filepath.Join("go-ml", "Models", s))
}
