package model

// Platform is a social media platform tag.
type Platform string

const (
	Instagram Platform = "instagram"
	Facebook  Platform = "facebook"
	YouTube   Platform = "youtube"
)

// PlatformInfo describes how links to a platform are presented on the map.
type PlatformInfo struct {
	Platform Platform `json:"name"`
	Label    string   `json:"label"`
	Icon     string   `json:"icon"`
}

var platforms = map[Platform]PlatformInfo{
	Instagram: {Platform: Instagram, Label: "Instagram", Icon: "icon-instagram"},
	Facebook:  {Platform: Facebook, Label: "Facebook", Icon: "icon-facebook"},
	YouTube:   {Platform: YouTube, Label: "YouTube", Icon: "icon-youtube"},
}

// Info returns the presentation descriptor of a known platform.
func (p Platform) Info() (PlatformInfo, bool) {
	info, ok := platforms[p]
	return info, ok
}

// Social is a link to a church's social media page.
type Social struct {
	Name      Platform `json:"name"`
	SocialURL string   `json:"socialUrl"`
}
