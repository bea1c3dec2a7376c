package checkpoint

import (
	"bytes"
	"testing"

	"go-ml.dev/pkg/nnet/nn"
	"gotest.tools/assert"
)

func Test_EncodeDecode(t *testing.T) {
	m := nn.NewMLP(21, 3, 5, 2)
	s := m.Snapshot()
	var buf bytes.Buffer
	assert.NilError(t, Encode(&buf, s))
	assert.Assert(t, buf.Len() > 0)

	q, err := Decode(&buf)
	assert.NilError(t, err)
	assert.DeepEqual(t, q, s)

	// a restored snapshot reproduces the network exactly
	r := nn.NewMLP(22, 3, 5, 2)
	assert.NilError(t, r.Restore(q))
	assert.DeepEqual(t, r.Snapshot(), s)
}

func Test_DecodeGarbage(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("not a snapshot")))
	assert.Assert(t, err != nil)
}
