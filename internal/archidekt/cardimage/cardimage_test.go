package cardimage

import "testing"

func TestURL(t *testing.T) {
	uid := "5d10b752-d9cb-419d-a5c4-d4ee1acb655e"

	tests := []struct {
		name string
		size Size
		face Face
		want string
	}{
		{"small front", SizeSmall, FaceFront, "https://cards.scryfall.io/small/front/5/d/" + uid + ".jpg"},
		{"normal front", SizeNormal, FaceFront, "https://cards.scryfall.io/normal/front/5/d/" + uid + ".jpg"},
		{"normal back", SizeNormal, FaceBack, "https://cards.scryfall.io/normal/back/5/d/" + uid + ".jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := URL(uid, tt.size, tt.face); got != tt.want {
				t.Errorf("URL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestURL_ShortIdentifier(t *testing.T) {
	if got := URL("x", SizeSmall, FaceFront); got != "" {
		t.Errorf("URL() = %q, want empty for an unshardable identifier", got)
	}
	if got := URL("", SizeSmall, FaceFront); got != "" {
		t.Errorf("URL() = %q, want empty", got)
	}
}

func TestArtCropURL(t *testing.T) {
	want := "https://storage.googleapis.com/archidekt-card-images/dom/abc-123_art_crop.jpg"
	if got := ArtCropURL("dom", "abc-123"); got != want {
		t.Errorf("ArtCropURL() = %q, want %q", got, want)
	}
	if got := ArtCropURL("", "abc-123"); got != "" {
		t.Errorf("ArtCropURL() = %q, want empty without a set code", got)
	}
}
