package jsonutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringSlice(t *testing.T) {
	out, bad := StringSlice([]byte(`["a","b"]`))
	assert.False(t, bad)
	assert.Equal(t, []string{"a", "b"}, out)

	out, bad = StringSlice(nil)
	assert.False(t, bad)
	assert.Nil(t, out)

	out, bad = StringSlice([]byte(`null`))
	assert.False(t, bad)
	assert.Nil(t, out)

	out, bad = StringSlice([]byte(`{broken`))
	assert.True(t, bad)
	assert.Nil(t, out)
}

func TestStringMap(t *testing.T) {
	type detail struct {
		Owner string `json:"owner"`
	}

	out, bad := StringMap[detail]([]byte(`{"TX-I-200":{"owner":"MHW LTD"}}`))
	assert.False(t, bad)
	assert.Equal(t, "MHW LTD", out["TX-I-200"].Owner)

	out, bad = StringMap[detail]([]byte(`null`))
	assert.False(t, bad)
	assert.Nil(t, out)

	out, bad = StringMap[detail]([]byte(`[1,2]`))
	assert.True(t, bad)
	assert.Nil(t, out)
}
