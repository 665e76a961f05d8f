package moguchat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParserAddr(t *testing.T) {
	var u *Addr
	var err error
	u, err = ParserAddr("unix:///tmp.socket")
	if err != nil {
		t.Error(err)
		return
	}
	assert.Equal(t, u.Network, "unix")
	assert.Equal(t, u.Address, "/tmp.socket")

	u, err = ParserAddr("tcp://localhost:9001")
	assert.Nil(t, err)
	assert.Equal(t, u.Network, "tcp")
	assert.Equal(t, u.Address, "localhost:9001")

	u, err = ParserAddr("tcp://127.0.0.1:8000")
	assert.Nil(t, err)
	assert.Equal(t, u.Network, "tcp")
	assert.Equal(t, u.Address, "127.0.0.1:8000")

	u, err = ParserAddr("tcp://golang.org")
	assert.Nil(t, err)
	assert.Equal(t, u.Network, "tcp")
	assert.Equal(t, u.Address, "golang.org")

	u, err = ParserAddr("udp://:80")
	assert.Nil(t, err)
	assert.Equal(t, u.Network, "udp")
	assert.Equal(t, u.Address, ":80")
}
