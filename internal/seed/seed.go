// Package seed decides, once per process, where the reading list comes
// from: the durable store when it holds books, the seed list otherwise.
package seed

import "github.com/MrSnakeDoc/shelf/internal/domain"

// Builtin returns the default reading list in presentation order: the
// first entry is shown on top.
func Builtin() []domain.Draft {
	return []domain.Draft{
		{
			Title:  "Night Watch",
			Author: "Terry Pratchett",
			URL:    "https://www.goodreads.com/book/show/47989.Night_Watch",
			Status: domain.NotRead,
		},
		{
			Title:  "On the Shortness of Life",
			Author: "Seneca",
			URL:    "https://www.goodreads.com/book/show/97412.On_the_Shortness_of_Life",
			Status: domain.NotRead,
		},
		{
			Title:  "Non Violent Communication",
			Author: "Marshall B. Rosenberg",
			URL:    "https://www.goodreads.com/book/show/560861.Non_Violent_Communication",
			Status: domain.Read,
		},
		{
			Title:  "As a Man Thinketh",
			Author: "James Allen",
			URL:    "https://www.goodreads.com/book/show/81959.As_a_Man_Thinketh",
			Status: domain.Read,
		},
		{
			Title:  "The War of Art",
			Author: "Steven Pressfield",
			URL:    "https://www.goodreads.com/book/show/1319.The_War_of_Art",
			Status: domain.Read,
		},
		{
			Title:  "The Creative Habit",
			Author: "Twyla Tharp",
			URL:    "https://www.goodreads.com/book/show/254799.The_Creative_Habit",
			Status: domain.Read,
		},
		{
			Title:  "Mindfulness in Plain English",
			Author: "Bhante Henepola Gunaratana",
			URL:    "https://www.goodreads.com/book/show/64369.Mindfulness_in_Plain_English",
			Status: domain.Read,
		},
	}
}
