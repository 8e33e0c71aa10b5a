package config

// DefaultRecommendedTags returns the curated tags offered by the recommend
// command until the config file replaces them.
func DefaultRecommendedTags() []RecommendedTag {
	return []RecommendedTag{
		{
			Tag:         "J-POP",
			Description: "Bright, upbeat picks for a neon-lit Tokyo stroll.",
			Videos: []string{
				"https://music.youtube.com/watch?v=VsjsJA0gbBg",
				"https://music.youtube.com/watch?v=swEwypY9sDs",
				"https://music.youtube.com/watch?v=z3lXnvbwqlA",
				"https://music.youtube.com/watch?v=Bxw-FnXWvB4",
				"https://music.youtube.com/watch?v=ChTPReYJxt4",
			},
		},
		{
			Tag:         "TONGUE TIED",
			Description: "Blue batman coffee",
			Videos: []string{
				"https://youtu.be/YXfLjIgvhD0",
				"https://youtu.be/Ryn5oAQppro",
				"https://youtu.be/hf_hW1VgbEA",
			},
		},
		{
			Tag:         "GLIDE",
			Description: "Late-night drift",
			Videos: []string{
				"https://youtube.com/watch?v=mQ9MMigZNQk",
				"https://music.youtube.com/watch?v=IeV1sYaOFCE",
				"https://music.youtube.com/watch?v=oYKwotHRdHo",
				"https://youtube.com/watch?v=AgeT5YbHsE8",
			},
		},
		{
			Tag:         "SHEENA ROLL",
			Description: "Foolish heart",
			Videos: []string{
				"https://music.youtube.com/watch?v=DotWP_7De-k",
				"https://music.youtube.com/watch?v=L8NwbaUXBmo",
				"https://music.youtube.com/watch?v=XJrTxW-QdEo",
			},
		},
		{
			Tag:         "neither",
			Description: "Deadpan indie",
			Videos: []string{
				"https://music.youtube.com/watch?v=6Ioib7lSWNw",
				"https://music.youtube.com/watch?v=nyuo9-OjNNg",
				"https://music.youtube.com/watch?v=w-0XOTVFs2k",
			},
		},
		{
			Tag:         "for Declan",
			Description: "Petite entaille",
			Videos: []string{
				"https://music.youtube.com/watch?v=numQPLqkb8Y",
				"https://music.youtube.com/watch?v=ykP640XEjSQ",
				"https://music.youtube.com/watch?v=vD7ODM0YjmE",
			},
		},
	}
}
