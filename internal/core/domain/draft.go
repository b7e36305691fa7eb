package domain

import "time"

// Draft is a generated character sheet stored in the library.
type Draft struct {
	ID        string    `db:"id"`
	Seed      string    `db:"seed"`
	Name      string    `db:"name"`
	Content   string    `db:"content"`
	Path      string    `db:"path"`
	CreatedAt time.Time `db:"created_at"`
}
