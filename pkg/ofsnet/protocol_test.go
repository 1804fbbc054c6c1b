package ofsnet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRequestSimple(t *testing.T) {
	req := ParseRequest("file_exists /a.txt")
	assert.Equal(t, "file_exists", req.Command)
	assert.Equal(t, []string{"/a.txt"}, req.Args)
}

func TestParseRequestQuotedArg(t *testing.T) {
	req := ParseRequest(`file_create /note.txt "hello world"`)
	assert.Equal(t, "file_create", req.Command)
	assert.Equal(t, []string{"/note.txt", "hello world"}, req.Args)
}

func TestParseRequestEmptyLine(t *testing.T) {
	req := ParseRequest("   \t  ")
	assert.Equal(t, "", req.Command)
	assert.Nil(t, req.Args)
}

func TestParseRequestTrimsWhitespace(t *testing.T) {
	req := ParseRequest("  login  alice   secret  ")
	assert.Equal(t, "login", req.Command)
	assert.Equal(t, []string{"alice", "secret"}, req.Args)
}

func TestSerializeResponseOmitsEmptyData(t *testing.T) {
	got := SerializeResponse(Response{Success: true, Message: "ok"})
	assert.Equal(t, `{"success":true,"message":"ok"}`+"\n", got)
}

func TestSerializeResponseIncludesData(t *testing.T) {
	got := SerializeResponse(Response{Success: true, Message: "ok", Data: "42"})
	assert.Equal(t, `{"success":true,"message":"ok","data":"42"}`+"\n", got)
}

func TestSerializeResponseEscapesQuotes(t *testing.T) {
	got := SerializeResponse(Response{Success: false, Message: `bad "path"`})
	assert.Contains(t, got, `bad \"path\"`)
}
