// internal/entity/kinds.go
package entity

import (
	"fmt"
	"net/http"
	"strconv"
)

// Year bounds accepted by the cars form.
const (
	MinYear = 1900
	MaxYear = 2030
)

// CoverPlaceholder is shown for books without a cover image.
const CoverPlaceholder = "https://via.placeholder.com/80x100/2c3e50/ecf0f1?text=📚"

// Genres lists the book genres offered by the books form.
var Genres = []string{"ficcion", "no-ficcion", "ciencia", "historia", "fantasia", "romance", "terror", "biografia"}

var genreIcons = map[string]string{
	"ficcion":    "📖",
	"no-ficcion": "📚",
	"ciencia":    "🔬",
	"historia":   "🏛️",
	"fantasia":   "🐉",
	"romance":    "💖",
	"terror":     "👻",
	"biografia":  "👤",
}

// GenreIcon returns the icon shown next to a genre name.
func GenreIcon(genre string) string {
	if icon, ok := genreIcons[genre]; ok {
		return icon
	}
	return genreIcons[DefaultGenre]
}

var NewsKind = Kind[News]{
	Meta: Meta{
		Name:         "news",
		Resource:     "noticias",
		Noun:         "news item",
		Title:        "News",
		UpdateMethod: http.MethodPut,
		Fields: []Field{
			{Name: "titulo", Label: "Title", Required: true},
			{Name: "contenido", Label: "Content", Required: true},
		},
		Columns:    []string{"Title", "Content"},
		SortColumn: -1,
	},
	ID:     func(n News) ID { return n.ID },
	WithID: func(n News, id ID) News { n.ID = id; return n },
	FromForm: func(f Form) News {
		return News{Title: f.Get("titulo"), Content: f.Get("contenido")}
	},
	ToForm: func(n News) Form {
		return Form{"titulo": n.Title, "contenido": n.Content}
	},
	Cells: func(n News) []string { return []string{n.Title, n.Content} },
	Label: func(n News) string { return n.Title },
}

var ToolKind = Kind[Tool]{
	Meta: Meta{
		Name:         "tools",
		Resource:     "herramientas",
		Noun:         "tool",
		Title:        "Tools",
		UpdateMethod: http.MethodPut,
		Fields: []Field{
			{Name: "nombre", Label: "Name", Required: true},
			{Name: "descripcion", Label: "Description", Required: true},
		},
		Columns:    []string{"Name", "Description"},
		SortColumn: -1,
	},
	ID:     func(t Tool) ID { return t.ID },
	WithID: func(t Tool, id ID) Tool { t.ID = id; return t },
	FromForm: func(f Form) Tool {
		return Tool{Name: f.Get("nombre"), Description: f.Get("descripcion")}
	},
	ToForm: func(t Tool) Form {
		return Form{"nombre": t.Name, "descripcion": t.Description}
	},
	Cells: func(t Tool) []string { return []string{t.Name, t.Description} },
	Label: func(t Tool) string { return t.Name },
}

var BrandKind = Kind[Brand]{
	Meta: Meta{
		Name:         "brands",
		Resource:     "marcas",
		Noun:         "brand",
		Title:        "Brands",
		UpdateMethod: http.MethodPatch,
		Fields: []Field{
			{Name: "nombre", Label: "Name", Required: true},
			{Name: "pais", Label: "Country", Required: true},
		},
		Columns:    []string{"Brand"},
		SortColumn: -1,
	},
	ID:     func(b Brand) ID { return b.ID },
	WithID: func(b Brand, id ID) Brand { b.ID = id; return b },
	FromForm: func(f Form) Brand {
		return Brand{Name: f.Get("nombre"), Country: f.Get("pais")}
	},
	ToForm: func(b Brand) Form {
		return Form{"nombre": b.Name, "pais": b.Country}
	},
	Cells: func(b Brand) []string { return []string{fmt.Sprintf("%s (%s)", b.Name, b.Country)} },
	Label: func(b Brand) string { return b.Name },
}

var CarKind = Kind[Car]{
	Meta: Meta{
		Name:         "cars",
		Resource:     "carros",
		Noun:         "car",
		Title:        "Cars",
		UpdateMethod: http.MethodPatch,
		Fields: []Field{
			{Name: "marca", Label: "Brand", Type: Choice, Required: true},
			{Name: "modelo", Label: "Model", Required: true},
			{Name: "anio", Label: "Year", Type: Integer, Required: true, Min: bound(MinYear), Max: bound(MaxYear)},
			{Name: "tipo", Label: "Type", Required: true},
		},
		Columns:    []string{"Car"},
		SortColumn: -1,
	},
	ID:     func(c Car) ID { return c.ID },
	WithID: func(c Car, id ID) Car { c.ID = id; return c },
	FromForm: func(f Form) Car {
		year, _ := strconv.Atoi(f.Get("anio"))
		return Car{Brand: f.Get("marca"), Model: f.Get("modelo"), Year: year, Type: f.Get("tipo")}
	},
	ToForm: func(c Car) Form {
		return Form{"marca": c.Brand, "modelo": c.Model, "anio": strconv.Itoa(c.Year), "tipo": c.Type}
	},
	Cells: func(c Car) []string {
		return []string{fmt.Sprintf("%s %s (%d) - %s", c.Brand, c.Model, c.Year, c.Type)}
	},
	Label: func(c Car) string { return c.Brand + " " + c.Model },
}

var BookKind = Kind[Book]{
	Meta: Meta{
		Name:         "books",
		Resource:     "libros",
		Noun:         "book",
		Title:        "Digital Library",
		UpdateMethod: http.MethodPut,
		Fields: []Field{
			{Name: "titulo", Label: "Title", Required: true},
			{Name: "autor", Label: "Author", Required: true},
			{Name: "precio", Label: "Price", Type: Decimal, Min: bound(0)},
			{Name: "descripcion", Label: "Synopsis"},
			{Name: "portada", Label: "Cover URL"},
			{Name: "genero", Label: "Genre", Type: Choice, Default: DefaultGenre, Options: Genres},
		},
		Columns:    []string{"ID", "Cover", "Price", "Title", "Author", "Synopsis", "Genre"},
		SortColumn: 2,
	},
	ID:     func(b Book) ID { return b.ID },
	WithID: func(b Book, id ID) Book { b.ID = id; return b },
	FromForm: func(f Form) Book {
		return Book{
			Title:       f.Get("titulo"),
			Author:      f.Get("autor"),
			Price:       ParseAmount(f.Get("precio")),
			Description: f.Get("descripcion"),
			Cover:       f.Get("portada"),
			Genre:       f.Get("genero"),
		}
	},
	ToForm: func(b Book) Form {
		return Form{
			"titulo":      b.Title,
			"autor":       b.Author,
			"precio":      b.Price.String(),
			"descripcion": b.Description,
			"portada":     b.Cover,
			"genero":      b.GenreOrDefault(),
		}
	},
	Cells: func(b Book) []string {
		cover := b.Cover
		if cover == "" {
			cover = CoverPlaceholder
		}
		return []string{
			b.ID.String(),
			cover,
			fmt.Sprintf("€%.2f", float64(b.Price)),
			b.Title,
			b.Author,
			b.Description,
			GenreIcon(b.Genre) + " " + b.GenreOrDefault(),
		}
	},
	Label: func(b Book) string { return b.Title },
	Price: func(b Book) float64 { return float64(b.Price) },
	Genre: func(b Book) string { return b.GenreOrDefault() },
}
