package main

// Seed data the stores are initialized with. Passwords in SeedUsers are
// plaintext here and hashed by the directory on load.

func SeedUsers() []User {
	return []User{
		{
			ID:            1,
			Username:      "admin",
			Password:      "admin123",
			Name:          "Admin User",
			Role:          RoleAdmin,
			Email:         "admin@library.com",
			BorrowedBooks: []int{},
		},
		{
			ID:            2,
			Username:      "user1",
			Password:      "user123",
			Name:          "John Doe",
			Role:          RoleUser,
			Email:         "john@example.com",
			BorrowedBooks: []int{1, 3},
		},
		{
			ID:            3,
			Username:      "doctor@126.com",
			Password:      "password",
			Name:          "Jane Smith",
			Role:          RoleUser,
			Email:         "jane@example.com",
			BorrowedBooks: []int{5},
		},
		{
			ID:            4,
			Username:      "wanghan46",
			Password:      "aaaaaa",
			Name:          "Admin User Wang",
			Role:          RoleAdmin,
			Email:         "admin@library.com",
			BorrowedBooks: []int{},
		},
	}
}

func SeedBooks() []Book {
	return []Book{
		{
			ID:          1,
			Title:       "To Kill a Mockingbird",
			Author:      "Harper Lee",
			ISBN:        "978-0061120084",
			PublishYear: 1960,
			Category:    "Fiction",
			Description: "The unforgettable novel of a childhood in a sleepy Southern town and the crisis of conscience that rocked it.",
			CoverImage:  "https://images.pexels.com/photos/3747139/pexels-photo-3747139.jpeg?auto=compress&cs=tinysrgb&w=600",
			Available:   false,
			Quantity:    3,
			BorrowedBy:  []int{2},
		},
		{
			ID:          2,
			Title:       "1984",
			Author:      "George Orwell",
			ISBN:        "978-0451524935",
			PublishYear: 1949,
			Category:    "Fiction",
			Description: "A dystopian novel set in Airstrip One, a province of the superstate Oceania in a world of perpetual war, omnipresent government surveillance, and public manipulation.",
			CoverImage:  "https://images.pexels.com/photos/3826686/pexels-photo-3826686.jpeg?auto=compress&cs=tinysrgb&w=600",
			Available:   true,
			Quantity:    2,
			BorrowedBy:  []int{},
		},
		{
			ID:          3,
			Title:       "The Great Gatsby",
			Author:      "F. Scott Fitzgerald",
			ISBN:        "978-0743273565",
			PublishYear: 1925,
			Category:    "Classic",
			Description: "A novel of triumph and tragedy, noted for the remarkable way Fitzgerald captured a cross-section of American society.",
			CoverImage:  "https://images.pexels.com/photos/2465877/pexels-photo-2465877.jpeg?auto=compress&cs=tinysrgb&w=600",
			Available:   false,
			Quantity:    1,
			BorrowedBy:  []int{2},
		},
		{
			ID:          4,
			Title:       "Pride and Prejudice",
			Author:      "Jane Austen",
			ISBN:        "978-0141439518",
			PublishYear: 1813,
			Category:    "Romance",
			Description: "A romantic novel of manners that follows the character development of Elizabeth Bennet.",
			CoverImage:  "https://images.pexels.com/photos/1765033/pexels-photo-1765033.jpeg?auto=compress&cs=tinysrgb&w=600",
			Available:   true,
			Quantity:    2,
			BorrowedBy:  []int{},
		},
		{
			ID:          5,
			Title:       "The Hobbit",
			Author:      "J.R.R. Tolkien",
			ISBN:        "978-0547928227",
			PublishYear: 1937,
			Category:    "Fantasy",
			Description: "A fantasy novel set in Middle-earth following the quest of Bilbo Baggins to win a share of the treasure guarded by Smaug the dragon.",
			CoverImage:  "https://images.pexels.com/photos/2386687/pexels-photo-2386687.jpeg?auto=compress&cs=tinysrgb&w=600",
			Available:   false,
			Quantity:    3,
			BorrowedBy:  []int{3},
		},
		{
			ID:          6,
			Title:       "The Catcher in the Rye",
			Author:      "J.D. Salinger",
			ISBN:        "978-0316769488",
			PublishYear: 1951,
			Category:    "Fiction",
			Description: "A controversial novel originally published for adults, it has since become popular with adolescents for its themes of teenage angst and alienation.",
			CoverImage:  "https://images.pexels.com/photos/2127790/pexels-photo-2127790.jpeg?auto=compress&cs=tinysrgb&w=600",
			Available:   true,
			Quantity:    2,
			BorrowedBy:  []int{},
		},
		{
			ID:          7,
			Title:       "The Lord of the Rings",
			Author:      "J.R.R. Tolkien",
			ISBN:        "978-0618640157",
			PublishYear: 1954,
			Category:    "Fantasy",
			Description: "An epic high-fantasy novel set in Middle-earth, the world at some distant time in the past.",
			CoverImage:  "https://images.pexels.com/photos/1738805/pexels-photo-1738805.jpeg?auto=compress&cs=tinysrgb&w=600",
			Available:   true,
			Quantity:    4,
			BorrowedBy:  []int{},
		},
		{
			ID:          8,
			Title:       "Harry Potter and the Philosopher's Stone",
			Author:      "J.K. Rowling",
			ISBN:        "978-0747532699",
			PublishYear: 1997,
			Category:    "Fantasy",
			Description: "The first novel in the Harry Potter series follows Harry Potter, a young wizard who discovers his magical heritage on his eleventh birthday.",
			CoverImage:  "https://images.pexels.com/photos/3388671/pexels-photo-3388671.jpeg?auto=compress&cs=tinysrgb&w=600",
			Available:   true,
			Quantity:    5,
			BorrowedBy:  []int{},
		},
	}
}

func SeedBorrowings() []BorrowRecord {
	returned := "2023-09-20"
	return []BorrowRecord{
		{ID: 1, UserID: 2, BookID: 1, BorrowDate: "2023-10-15", ReturnDate: nil, Status: StatusActive},
		{ID: 2, UserID: 2, BookID: 3, BorrowDate: "2023-10-20", ReturnDate: nil, Status: StatusActive},
		{ID: 3, UserID: 3, BookID: 5, BorrowDate: "2023-10-10", ReturnDate: nil, Status: StatusOverdue},
		{ID: 4, UserID: 2, BookID: 4, BorrowDate: "2023-09-01", ReturnDate: &returned, Status: StatusReturned},
	}
}
