package main

import "errors"

var ErrBookNotFound = errors.New("book not found")

// Book represents a catalog entry. Quantity is the total number of owned
// copies and BorrowedBy lists the ids of users currently holding one.
// Available is derived: it caches whether a free copy remains.
type Book struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	ISBN        string `json:"isbn"`
	PublishYear int    `json:"publishYear"`
	Category    string `json:"category"`
	Description string `json:"description"`
	CoverImage  string `json:"coverImage"`
	Available   bool   `json:"available"`
	Quantity    int    `json:"quantity"`
	BorrowedBy  []int  `json:"borrowedBy"`
}

// clone returns a copy of the book whose BorrowedBy slice does not
// alias store-owned memory.
func (b Book) clone() Book {
	b.BorrowedBy = append([]int(nil), b.BorrowedBy...)
	return b
}

// BookDraft carries the descriptive fields of a book to be created.
// The store assigns the id and the lending state itself.
type BookDraft struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	ISBN        string `json:"isbn"`
	PublishYear int    `json:"publishYear"`
	Category    string `json:"category"`
	Description string `json:"description"`
	CoverImage  string `json:"coverImage"`
	Quantity    int    `json:"quantity"`
}

// BookPatch is a partial update of a book. Nil fields keep the current
// value. Lending state (BorrowedBy, Available) is never patched directly.
type BookPatch struct {
	Title       *string `json:"title,omitempty"`
	Author      *string `json:"author,omitempty"`
	ISBN        *string `json:"isbn,omitempty"`
	PublishYear *int    `json:"publishYear,omitempty"`
	Category    *string `json:"category,omitempty"`
	Description *string `json:"description,omitempty"`
	CoverImage  *string `json:"coverImage,omitempty"`
	Quantity    *int    `json:"quantity,omitempty"`
}

func (p BookPatch) applyTo(b *Book) {
	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.Author != nil {
		b.Author = *p.Author
	}
	if p.ISBN != nil {
		b.ISBN = *p.ISBN
	}
	if p.PublishYear != nil {
		b.PublishYear = *p.PublishYear
	}
	if p.Category != nil {
		b.Category = *p.Category
	}
	if p.Description != nil {
		b.Description = *p.Description
	}
	if p.CoverImage != nil {
		b.CoverImage = *p.CoverImage
	}
	if p.Quantity != nil {
		b.Quantity = *p.Quantity
	}
}
