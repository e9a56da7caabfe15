package document

// NewSampleCatalog returns the built-in hat types used when no catalog
// source is configured. Image URLs are relative to the asset host.
func NewSampleCatalog() map[string]HatType {
	trucker := HatType{
		ID:    "trucker",
		Name:  "Classic Trucker",
		Parts: []Part{PartFront, PartMesh, PartBrim, PartRope},
		Images: ViewImages{
			Front: "/assets/hats/trucker-front.png",
			Back:  "/assets/hats/trucker-back.png",
		},
		MarkerColors: map[Part]string{
			PartFront: "#172c63",
			PartMesh:  "#1f7a3a",
			PartBrim:  "#b3261e",
			PartRope:  "#e0c341",
		},
		Canvas: CanvasConfig{
			Width:  500,
			Height: 500,
			DesignArea: map[View]Rect{
				ViewFront: {X: 150, Y: 120, Width: 200, Height: 140},
				ViewBack:  {X: 170, Y: 110, Width: 160, Height: 90},
			},
		},
		Tolerance: DefaultTolerance,
	}

	snapback := HatType{
		ID:    "snapback",
		Name:  "Flat Brim Snapback",
		Parts: []Part{PartFront, PartBrim},
		Images: ViewImages{
			Front: "/assets/hats/snapback-front.png",
			Back:  "/assets/hats/snapback-back.png",
		},
		Canvas: CanvasConfig{Width: 600, Height: 450},
	}

	return map[string]HatType{
		trucker.ID:  trucker.WithDefaults(),
		snapback.ID: snapback.WithDefaults(),
	}
}
