package utils

import (
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestUploadSubDir(t *testing.T) {
	c := qt.New(t)

	c.Assert(UploadSubDir("image/png"), qt.Equals, "images")
	c.Assert(UploadSubDir("image/jpeg"), qt.Equals, "images")
	c.Assert(UploadSubDir("application/pdf"), qt.Equals, "files")
	c.Assert(UploadSubDir(""), qt.Equals, "files")
}

func TestBuildUploadName(t *testing.T) {
	c := qt.New(t)

	name := BuildUploadName("Sunday Bulletin.PDF", "application/pdf")
	c.Assert(strings.HasSuffix(name, ".pdf"), qt.IsTrue)
	c.Assert(strings.Contains(name, " "), qt.IsFalse)

	// A hostile extension is dropped for the content-type default.
	name = BuildUploadName("evil.p;rm -rf", "application/octet-stream")
	c.Assert(strings.HasSuffix(name, ".bin"), qt.IsTrue)

	name = BuildUploadName("photo", "image/png")
	c.Assert(strings.HasSuffix(name, ".png"), qt.IsTrue)

	// Names are collision resistant.
	a := BuildUploadName("a.txt", "text/plain")
	b := BuildUploadName("a.txt", "text/plain")
	c.Assert(a, qt.Not(qt.Equals), b)
}
