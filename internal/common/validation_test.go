package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAbsolutePath(t *testing.T) {
	assert.NoError(t, ValidateAbsolutePath("/etc/systemd/sleep.conf.d"))
	assert.Error(t, ValidateAbsolutePath(""))
	assert.Error(t, ValidateAbsolutePath("   "))
	assert.Error(t, ValidateAbsolutePath("relative/path"))
}

func TestValidateChildPath(t *testing.T) {
	assert.NoError(t, ValidateChildPath("/etc/systemd/sleep.conf.d", "/etc/systemd/sleep.conf.d/nosuspend.conf"))

	// Trailing slash and dot segments normalize away.
	assert.NoError(t, ValidateChildPath("/etc/systemd/sleep.conf.d/", "/etc/systemd/sleep.conf.d/./nosuspend.conf"))

	// Grandchild, sibling, and traversal are all rejected.
	assert.Error(t, ValidateChildPath("/etc", "/etc/systemd/nosuspend.conf"))
	assert.Error(t, ValidateChildPath("/etc/systemd", "/etc/other/file.conf"))
	assert.Error(t, ValidateChildPath("/etc/systemd", "/etc/systemd/../passwd"))

	// Relative paths are rejected.
	assert.Error(t, ValidateChildPath("etc", "etc/file.conf"))
	assert.Error(t, ValidateChildPath("/etc", "file.conf"))
}

func TestValidateURL(t *testing.T) {
	assert.NoError(t, ValidateURL("https://download.anydesk.com/linux/anydesk.rpm"))
	assert.NoError(t, ValidateURL("http://example.com/file"))
	assert.Error(t, ValidateURL(""))
	assert.Error(t, ValidateURL("ftp://example.com/file"))
	assert.Error(t, ValidateURL("https://"))
	assert.Error(t, ValidateURL("not a url"))
}
