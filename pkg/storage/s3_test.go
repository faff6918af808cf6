package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tensaku-lab/backend/config"
)

func Test_s3Storage_objectKey(t *testing.T) {
	s := &s3Storage{cfg: config.StorageConfigs{PublicEndpoint: "https://cdn.example.com/"}}

	key := s.objectKey(&UploadObject{Prefix: "images", FileName: "../my photo.png"})
	require.True(t, strings.HasPrefix(key, "images/"))
	require.True(t, strings.HasSuffix(key, "-my_photo.png"))

	require.Equal(t, "https://cdn.example.com/bucket/"+key, s.publicURL("bucket", key))
}
