package locator

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "http url",
			in:   "http://tiles.example.com/layer/3/4/5.png",
			want: "http___tiles.example.com_layer_3_4_5.png",
		},
		{
			name: "query string",
			in:   "https://x/wms?layers=a|b&format=\"png\"",
			want: "https___x_wms_layers=a_b&format=_png_",
		},
		{
			name: "all illegal characters",
			in:   `\/:*?"<>|`,
			want: "_________",
		},
		{
			name: "nothing to replace",
			in:   "plain-name.xml",
			want: "plain-name.xml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestLocate(t *testing.T) {
	l := New("")
	assert.Equal(t, DefaultDirectory, l.Directory())

	url := "http://x/tile.png"
	first := l.Locate(url)
	second := l.Locate(url)

	assert.Equal(t, first, second, "locating the same URL twice must give the same path")
	assert.Equal(t, filepath.Join(DefaultDirectory, "http___x_tile.png"), first)
}

func TestLocate_CustomDirectory(t *testing.T) {
	l := New("tiles")
	assert.Equal(t, filepath.Join("tiles", "file____tmp_a.xml"), l.Locate("file:///tmp/a.xml"))
}

func TestLocate_SanitizedCollision(t *testing.T) {
	l := New("")
	// Known limitation: URLs that differ only in escaped characters collide.
	assert.Equal(t, l.Locate("http://x/a:b"), l.Locate("http://x/a?b"))
}
