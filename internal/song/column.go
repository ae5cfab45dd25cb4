package song

import (
	"fmt"
	"strings"
)

// Column names a song attribute that can be searched or sorted on.
type Column string

const (
	Title        Column = "title"
	Artist       Column = "artist"
	Album        Column = "album"
	Genre        Column = "genre"
	Year         Column = "year"
	Length       Column = "length"
	DateModified Column = "date_modified"
)

// Columns lists every column in display order.
var Columns = []Column{Title, Artist, Album, Genre, Year, Length, DateModified}

func (c Column) String() string { return strings.ReplaceAll(string(c), "_", " ") }

// InvalidColumnError is returned when a name does not match any column.
type InvalidColumnError struct {
	Name string
}

func (e *InvalidColumnError) Error() string {
	return fmt.Sprintf("unknown column %q", e.Name)
}

// ParseColumn resolves a user-supplied column name. "date modified",
// "date-modified" and "date_modified" are all accepted.
func ParseColumn(name string) (Column, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.NewReplacer(" ", "_", "-", "_").Replace(n)
	for _, c := range Columns {
		if string(c) == n {
			return c, nil
		}
	}
	return "", &InvalidColumnError{Name: name}
}
