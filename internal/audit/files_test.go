package audit

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"
)

type FilesSuite struct {
	suite.Suite
}

func TestFilesSuite(t *testing.T) {
	suite.Run(t, new(FilesSuite))
}

func (s *FilesSuite) TestFileItems() {
	s.Run("carries provenance metadata and drops the path", func() {
		items := fileItems(ItemAdded, []FileMeta{
			{Name: "badge-photo.png", Size: 48213, Mime: "image/png", Path: "/var/uploads/2026/badge-photo.png"},
		}, "photos")

		s.Require().Len(items, 1)
		item := items[0]
		s.Equal("file", item.Type)
		s.Equal("badge-photo.png", item.Name)
		s.Equal(int64(48213), item.Size)
		s.Equal("image/png", item.Mime)
		s.True(item.IsImage)
		s.Equal("photos", item.Category)
		s.Equal(ItemAdded, item.Action)

		// The storage path must not survive serialization either.
		payload, err := json.Marshal(item)
		s.Require().NoError(err)
		s.NotContains(string(payload), "/var/uploads")
	})

	s.Run("image detection falls back from mime to extension", func() {
		items := fileItems(ItemAdded, []FileMeta{
			{Name: "floorplan.JPG", Mime: "application/octet-stream"},
			{Name: "nda.pdf", Mime: "application/pdf"},
			{Name: "logo", Mime: "image/svg+xml"},
		}, "")

		s.Require().Len(items, 3)
		s.True(items[0].IsImage)
		s.False(items[1].IsImage)
		s.True(items[2].IsImage)
	})
}
