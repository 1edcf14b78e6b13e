package screen

// Slide is what the redirect page shows for a rotation state.
type Slide struct {
	Message      string `json:"message"`
	Image        string `json:"image"`
	ImageDesktop string `json:"image_desktop"`
	Theme        string `json:"theme"` // primary/secondary
}

var slides = [...]Slide{
	Initial: {
		Message:      "I don't feel like cooking. Let's order food delivery.",
		Image:        "/images/welcome-page/bike_black.png",
		ImageDesktop: "/images/welcome-page/darkBike.png",
		Theme:        "primary",
	},
	Next: {
		Message:      "Donut worry, be happy and eat more donuts!",
		Image:        "/images/welcome-page/bike_yellow.png",
		ImageDesktop: "/images/welcome-page/yellowBikeFull.png",
		Theme:        "secondary",
	},
	Final: {
		Message:      "Good music and good food makes me happy.",
		Image:        "/images/welcome-page/darkBikeKa.png",
		ImageDesktop: "/images/welcome-page/darkBike.png",
		Theme:        "primary",
	},
}

// SlideFor returns the slide shown in state r.
func SlideFor(r RotationState) Slide {
	return slides[r]
}
