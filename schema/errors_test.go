package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessages(t *testing.T) {
	inner := errors.New("boom")

	perr := &ParseError{Path: "a.yaml", Err: inner}
	assert.Equal(t, "parse a.yaml: boom", perr.Error())
	assert.ErrorIs(t, perr, inner)

	werr := &WriteError{Path: "out.sqlite3", Err: inner}
	assert.Equal(t, "write out.sqlite3: boom", werr.Error())
	assert.ErrorIs(t, werr, inner)

	cerr := &ConfigError{Path: "dash.yaml", Err: inner}
	assert.Equal(t, "configuration dash.yaml: boom", cerr.Error())
	assert.ErrorIs(t, cerr, inner)

	ferr := &FilterError{Squad: "arch"}
	assert.Equal(t, `squad "arch" is not configured`, ferr.Error())
}
