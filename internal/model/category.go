package model

// DefaultCategories is the category menu offered by the front ends when
// recording a transaction. Any non-empty text is accepted as a category.
var DefaultCategories = []string{
	"Makan",
	"Transport",
	"Kuota",
	"Tugas",
	"Belanja",
	"Lainnya",
}
