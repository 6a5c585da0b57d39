package middlewares

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"farmlink/models"
)

func TestAllowedImage(t *testing.T) {
	assert.True(t, AllowedImage("photo.jpg"))
	assert.True(t, AllowedImage("photo.JPEG"))
	assert.True(t, AllowedImage("banner.webp"))
	assert.True(t, AllowedImage("anim.gif"))

	assert.False(t, AllowedImage("script.php"))
	assert.False(t, AllowedImage("archive.zip"))
	assert.False(t, AllowedImage("noextension"))
}

func TestUploadFilename(t *testing.T) {
	name := UploadFilename("image", "My Photo.PNG")
	assert.True(t, strings.HasPrefix(name, "image-"))
	assert.True(t, strings.HasSuffix(name, ".png"))
	assert.NotContains(t, name, " ")
}

func TestUploadFolder(t *testing.T) {
	assert.Equal(t, "products", UploadFolder("products", models.RoleSeller))
	assert.Equal(t, "farmer", UploadFolder("profile", models.RoleSeller))
	assert.Equal(t, "buyer", UploadFolder("profile", models.RoleBuyer))
	assert.Equal(t, "buyer", UploadFolder("profile", models.RoleAdmin))
	assert.Equal(t, "others", UploadFolder("profile", ""))
}
