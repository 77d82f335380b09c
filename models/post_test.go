package models

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestValidCategory(t *testing.T) {
	c := qt.New(t)

	for _, key := range Categories {
		c.Assert(ValidCategory(key), qt.IsTrue, qt.Commentf("category %q", key))
	}
	c.Assert(ValidCategory("announcements"), qt.IsFalse)
	c.Assert(ValidCategory(""), qt.IsFalse)
	c.Assert(ValidCategory("FREE"), qt.IsFalse)
}

func TestValidAttachmentType(t *testing.T) {
	c := qt.New(t)

	c.Assert(ValidAttachmentType(AttachmentImage), qt.IsTrue)
	c.Assert(ValidAttachmentType(AttachmentFile), qt.IsTrue)
	c.Assert(ValidAttachmentType(AttachmentLink), qt.IsTrue)
	c.Assert(ValidAttachmentType("image"), qt.IsFalse)
	c.Assert(ValidAttachmentType(""), qt.IsFalse)
}
