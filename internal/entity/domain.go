// internal/entity/domain.go
package entity

// News represents a news item shown on the news admin page.
type News struct {
	ID      ID     `json:"id,omitempty"`
	Title   string `json:"titulo"`
	Content string `json:"contenido"`
}

// Tool represents an entry on the tools admin page.
type Tool struct {
	ID          ID     `json:"id,omitempty"`
	Name        string `json:"nombre"`
	Description string `json:"descripcion"`
}

// Brand represents a car brand.
type Brand struct {
	ID      ID     `json:"id,omitempty"`
	Name    string `json:"nombre"`
	Country string `json:"pais"`
}

// Car represents a car listed under a brand name.
type Car struct {
	ID    ID     `json:"id,omitempty"`
	Brand string `json:"marca"`
	Model string `json:"modelo"`
	Year  int    `json:"anio"`
	Type  string `json:"tipo"`
}

// Book represents a book in the digital library catalog.
type Book struct {
	ID          ID     `json:"id,omitempty"`
	Title       string `json:"titulo"`
	Author      string `json:"autor"`
	Price       Amount `json:"precio"`
	Description string `json:"descripcion"`
	Cover       string `json:"portada"`
	Genre       string `json:"genero"`
}

// DefaultGenre is assumed for books that carry no genre.
const DefaultGenre = "ficcion"

// GenreOrDefault returns the book genre, falling back to DefaultGenre.
func (b Book) GenreOrDefault() string {
	if b.Genre == "" {
		return DefaultGenre
	}
	return b.Genre
}
