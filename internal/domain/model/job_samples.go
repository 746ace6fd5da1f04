package model

// SampleJobPostings returns the built-in catalog, newest first.
// A fresh slice is returned on every call.
func SampleJobPostings() []JobPosting {
	return []JobPosting{
		{
			ID:          1,
			Title:       "Web Developer Needed",
			Description: "Looking for an experienced web developer to build a modern e-commerce website. Must be proficient in React, Node.js, and MongoDB.",
			Category:    "Web Development",
			Budget:      "$1000 - $2000",
			Currency:    "USD",
			PostedDate:  "2024-04-03",
		},
		{
			ID:          2,
			Title:       "Mobile App Design",
			Description: "Need a UI/UX designer for a fitness tracking mobile application. Experience with Figma and mobile design patterns required.",
			Category:    "Design",
			Budget:      "$500 - $1000",
			Currency:    "USD",
			PostedDate:  "2024-04-02",
		},
		{
			ID:          3,
			Title:       "Content Writer for Tech Blog",
			Description: "Seeking a skilled content writer with expertise in technology and software development. Must have experience writing technical articles.",
			Category:    "Writing",
			Budget:      "$300 - $500",
			Currency:    "USD",
			PostedDate:  "2024-04-01",
		},
		{
			ID:          4,
			Title:       "Social Media Marketing Expert",
			Description: "Looking for a social media marketing specialist to manage our brand presence across platforms. Experience with Facebook, Instagram, and LinkedIn required.",
			Category:    "Marketing",
			Budget:      "$800 - $1200",
			Currency:    "USD",
			PostedDate:  "2024-03-31",
		},
		{
			ID:          5,
			Title:       "Python Developer for Data Analysis",
			Description: "Need a Python developer to create data analysis scripts and visualizations. Experience with pandas, numpy, and matplotlib required.",
			Category:    "Data Science",
			Budget:      "$700 - $1000",
			Currency:    "USD",
			PostedDate:  "2024-03-30",
		},
		{
			ID:          6,
			Title:       "iOS App Developer",
			Description: "Seeking an experienced iOS developer to build a productivity app. Must be proficient in Swift and have published apps on the App Store.",
			Category:    "Mobile Development",
			Budget:      "$1500 - $2500",
			Currency:    "USD",
			PostedDate:  "2024-03-29",
		},
		{
			ID:          7,
			Title:       "SEO Specialist",
			Description: "Looking for an SEO expert to optimize our website and improve search rankings. Experience with keyword research and technical SEO required.",
			Category:    "Marketing",
			Budget:      "$600 - $900",
			Currency:    "USD",
			PostedDate:  "2024-03-28",
		},
		{
			ID:          8,
			Title:       "UI/UX Designer for Web Platform",
			Description: "Need a UI/UX designer to create a modern and intuitive interface for our web platform. Experience with user research and wireframing required.",
			Category:    "Design",
			Budget:      "$1000 - $1500",
			Currency:    "USD",
			PostedDate:  "2024-03-27",
		},
	}
}
