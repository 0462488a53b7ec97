package logsvc

import (
	"bytes"
	"errors"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/ams/core/user"
)

func TestRollbarLogger_print(t *testing.T) {
	buf := new(bytes.Buffer)
	l := NewRollbarLogger(log.New(buf, "", 0))
	l.Enable(false)

	l.Warn("saving marks", errors.New("boom"), user.User{ID: "u1", Email: "t@school.test"})
	l.Info("ready")

	assert.Equal(t, "WARN: saving marks\nboom\nINFO: ready\n", buf.String())
}
