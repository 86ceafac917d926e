package printerconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewGeneratesUniqueIDAndStartsInSetup(t *testing.T) {
	a := New()
	b := New()

	assert.NotEmpty(t, a.UniqueID)
	assert.NotEqual(t, a.UniqueID, b.UniqueID)
	assert.True(t, a.InSetup)
	assert.Zero(t, a.ID)
}

func TestMarkDeletedResetsRegistrationFields(t *testing.T) {
	c := New()
	c.ID = 42
	c.InSetup = false
	c.ShortID = "ABCD"
	c.Token = "keep-me"
	uid := c.UniqueID

	c.MarkDeleted()

	assert.Zero(t, c.ID)
	assert.True(t, c.InSetup)
	assert.Empty(t, c.ShortID)
	assert.Equal(t, uid, c.UniqueID, "unique_id must survive a delete notification")
	assert.Equal(t, "keep-me", c.Token, "token is untouched by MarkDeleted")
}
