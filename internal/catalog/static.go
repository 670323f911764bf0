package catalog

import "github.com/desertthunder/tunify/internal/models"

// StaticSongs is the built-in catalog available before any backend rows are
// merged. Assets are served relative to the player's public root.
func StaticSongs() []models.Song {
	return []models.Song{
		{ID: "1", Title: "Lost Soul", Artist: "NBSPLV", CoverURL: "/covers/cover1.jpeg", AudioURL: "/song1.mp3"},
		{ID: "2", Title: "Sajni", Artist: "Arijit Singh", CoverURL: "/covers/cover2.jpg", AudioURL: "/song2.mp3"},
		{ID: "3", Title: "Antariksh", Artist: "Anuv Jain", CoverURL: "/covers/cover3.jpeg", AudioURL: "/song3.mp3"},
		{ID: "4", Title: "Gul", Artist: "Anuv Jain", CoverURL: "/covers/cover4.jpg", AudioURL: "/song4.mp3"},
		{ID: "5", Title: "Husn", Artist: "Anuv Jain", CoverURL: "/covers/cover5.jpg", AudioURL: "/song5.mp3"},
		{ID: "6", Title: "Bakhuda Tumhi Ho", Artist: "Atif Aslam", CoverURL: "/covers/cover6.jpeg", AudioURL: "/song6.mp3"},
		{ID: "7", Title: "Amplifier", Artist: "Imran Khan", CoverURL: "/covers/cover7.jpeg", AudioURL: "/song7.mp3"},
		{ID: "8", Title: "Bewafa", Artist: "Imran Khan", CoverURL: "/covers/cover8.jpeg", AudioURL: "/song8.mp3"},
	}
}
