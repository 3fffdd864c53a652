package store

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/gosimple/slug"

	"cine-reservas-cli/logger"
	"cine-reservas-cli/model"
	"cine-reservas-cli/validate"
)

// MovieHeader is written when the catalog file does not exist yet. An
// existing file keeps its own header and column order.
var MovieHeader = []string{"ID", "Titulo", "Genero", "Duracion_min"}

var ErrMovieNotFound = errors.New("movie not found")

const (
	maxTitleLen = 120
	maxGenreLen = 60
)

// MovieInput carries raw catalog values. Blank fields keep the current value
// on Update.
type MovieInput struct {
	Title    string
	Genre    string
	Duration string
}

// MovieCatalog reads and edits the movies file. Rows it does not touch are
// written back byte for byte.
type MovieCatalog struct {
	path string
	log  *logger.Logger
	mu   sync.Mutex
}

func NewMovieCatalog(path string, log *logger.Logger) *MovieCatalog {
	if log == nil {
		log = logger.Discard()
	}
	return &MovieCatalog{path: path, log: log.With("store", "movies")}
}

type movieRow struct {
	raw    []byte
	record []string
	dirty  bool
}

type movieTable struct {
	header []byte
	cols   movieHeader
	width  int
	rows   []movieRow
}

// Load returns the movies in file order. A missing file is an empty catalog.
func (c *MovieCatalog) Load() ([]model.Movie, error) {
	table, err := c.read()
	if err != nil {
		return nil, err
	}
	var movies []model.Movie
	for _, row := range table.rows {
		if movie, ok := table.movie(row); ok {
			movies = append(movies, movie)
		}
	}
	return movies, nil
}

// List returns the movies whose genre matches genre, ignoring case and
// accents. An empty genre returns every movie.
func (c *MovieCatalog) List(genre string) ([]model.Movie, error) {
	movies, err := c.Load()
	if err != nil {
		return nil, err
	}
	want := slug.Make(genre)
	if want == "" {
		return movies, nil
	}
	var out []model.Movie
	for _, m := range movies {
		if slug.Make(m.Genre) == want {
			out = append(out, m)
		}
	}
	return out, nil
}

func (c *MovieCatalog) Lookup(id string) (model.Movie, bool, error) {
	movies, err := c.Load()
	if err != nil {
		return model.Movie{}, false, err
	}
	id = strings.TrimSpace(id)
	for _, m := range movies {
		if m.ID == id {
			return m, true, nil
		}
	}
	return model.Movie{}, false, nil
}

// Add validates in and appends a movie with the next numeric id.
func (c *MovieCatalog) Add(in MovieInput) (model.Movie, error) {
	title, err := validate.Title(in.Title, "Title", maxTitleLen)
	if err != nil {
		return model.Movie{}, err
	}
	genre, err := validate.Title(in.Genre, "Genre", maxGenreLen)
	if err != nil {
		return model.Movie{}, err
	}
	duration, err := validate.Duration(in.Duration)
	if err != nil {
		return model.Movie{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	table, err := c.readForWrite()
	if err != nil {
		return model.Movie{}, err
	}
	movie := model.Movie{
		ID:       table.nextID(),
		Title:    title,
		Genre:    genre,
		Duration: strconv.Itoa(duration),
	}
	record := make([]string, table.width)
	table.set(record, movie)
	table.rows = append(table.rows, movieRow{record: record, dirty: true})

	if err := c.write(table); err != nil {
		return model.Movie{}, err
	}
	c.log.Info("movie added", "id", movie.ID, "title", movie.Title)
	return movie, nil
}

// Update changes the non-blank fields of in on movie id.
func (c *MovieCatalog) Update(id string, in MovieInput) (model.Movie, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	table, err := c.readForWrite()
	if err != nil {
		return model.Movie{}, err
	}
	idx, movie, err := table.find(id)
	if err != nil {
		return model.Movie{}, err
	}
	if strings.TrimSpace(in.Title) != "" {
		if movie.Title, err = validate.Title(in.Title, "Title", maxTitleLen); err != nil {
			return model.Movie{}, err
		}
	}
	if strings.TrimSpace(in.Genre) != "" {
		if movie.Genre, err = validate.Title(in.Genre, "Genre", maxGenreLen); err != nil {
			return model.Movie{}, err
		}
	}
	if strings.TrimSpace(in.Duration) != "" {
		duration, err := validate.Duration(in.Duration)
		if err != nil {
			return model.Movie{}, err
		}
		movie.Duration = strconv.Itoa(duration)
	}

	row := &table.rows[idx]
	record := make([]string, max(len(row.record), table.width))
	copy(record, row.record)
	table.set(record, movie)
	row.record, row.dirty = record, true

	if err := c.write(table); err != nil {
		return model.Movie{}, err
	}
	c.log.Info("movie updated", "id", movie.ID)
	return movie, nil
}

// Delete removes movie id and returns it.
func (c *MovieCatalog) Delete(id string) (model.Movie, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	table, err := c.readForWrite()
	if err != nil {
		return model.Movie{}, err
	}
	idx, movie, err := table.find(id)
	if err != nil {
		return model.Movie{}, err
	}
	table.rows = append(table.rows[:idx], table.rows[idx+1:]...)

	if err := c.write(table); err != nil {
		return model.Movie{}, err
	}
	c.log.Info("movie deleted", "id", movie.ID, "title", movie.Title)
	return movie, nil
}

// read parses the catalog keeping the raw bytes of the header and of every
// row. A missing or empty file yields a table without a header.
func (c *MovieCatalog) read() (*movieTable, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &movieTable{}, nil
		}
		return nil, fmt.Errorf("read movies: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &movieTable{}, nil
		}
		return nil, fmt.Errorf("read movies header: %w", err)
	}
	table := &movieTable{
		header: data[:reader.InputOffset()],
		cols:   movieColumns(header),
		width:  len(header),
	}
	if table.cols.id < 0 {
		return nil, fmt.Errorf("%s: %w: no movie id column", c.path, ErrUnexpectedHeader)
	}

	for {
		start := reader.InputOffset()
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		row := movieRow{raw: data[start:reader.InputOffset()], record: record}
		if err != nil {
			c.log.Warn("skipping movie row", "path", c.path, "error", err)
			row.record = nil
		}
		table.rows = append(table.rows, row)
	}
	return table, nil
}

// readForWrite is read plus the columns an edit needs. A catalog without a
// header gets MovieHeader.
func (c *MovieCatalog) readForWrite() (*movieTable, error) {
	table, err := c.read()
	if err != nil {
		return nil, err
	}
	if table.header == nil {
		table.cols = movieColumns(MovieHeader)
		table.width = len(MovieHeader)
		return table, nil
	}
	if table.cols.title < 0 || table.cols.genre < 0 || table.cols.duration < 0 {
		return nil, fmt.Errorf("%s: %w: title, genre and duration columns are required to edit", c.path, ErrUnexpectedHeader)
	}
	return table, nil
}

func (c *MovieCatalog) write(table *movieTable) error {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if table.header == nil {
		if err := writer.Write(MovieHeader); err != nil {
			return fmt.Errorf("%w: %v", ErrStorageWrite, err)
		}
		writer.Flush()
	} else {
		writeLine(&buf, table.header)
	}
	for _, row := range table.rows {
		if !row.dirty {
			writeLine(&buf, row.raw)
			continue
		}
		if err := writer.Write(row.record); err != nil {
			return fmt.Errorf("%w: %v", ErrStorageWrite, err)
		}
		writer.Flush()
	}
	if err := writer.Error(); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}
	return writeFileAtomic(c.path, buf.Bytes())
}

func writeLine(buf *bytes.Buffer, raw []byte) {
	buf.Write(raw)
	if !bytes.HasSuffix(raw, []byte("\n")) {
		buf.WriteByte('\n')
	}
}

func (t *movieTable) movie(row movieRow) (model.Movie, bool) {
	if row.record == nil {
		return model.Movie{}, false
	}
	movie := model.Movie{
		ID:       cell(row.record, t.cols.id),
		Title:    cell(row.record, t.cols.title),
		Genre:    cell(row.record, t.cols.genre),
		Duration: cell(row.record, t.cols.duration),
	}
	return movie, movie.ID != ""
}

func (t *movieTable) find(id string) (int, model.Movie, error) {
	id = strings.TrimSpace(id)
	for i, row := range t.rows {
		if movie, ok := t.movie(row); ok && movie.ID == id {
			return i, movie, nil
		}
	}
	return -1, model.Movie{}, fmt.Errorf("%w: %s", ErrMovieNotFound, id)
}

// nextID is one more than the largest numeric id, ignoring other ids.
func (t *movieTable) nextID() string {
	highest := 0
	for _, row := range t.rows {
		movie, ok := t.movie(row)
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(movie.ID); err == nil && n > highest {
			highest = n
		}
	}
	return strconv.Itoa(highest + 1)
}

func (t *movieTable) set(record []string, m model.Movie) {
	record[t.cols.id] = m.ID
	record[t.cols.title] = m.Title
	record[t.cols.genre] = m.Genre
	record[t.cols.duration] = m.Duration
}

type movieHeader struct {
	id, title, genre, duration int
}

// movieColumns finds columns by their folded name: "ID Película", "id_pelicula"
// and "IdPelicula" all fold to "idpelicula".
func movieColumns(header []string) movieHeader {
	cols := movieHeader{id: -1, title: -1, genre: -1, duration: -1}
	for i, name := range header {
		key := foldHeader(name)
		switch {
		case key == "id" || key == "idpelicula":
			if cols.id < 0 {
				cols.id = i
			}
		case key == "titulo" || key == "title":
			if cols.title < 0 {
				cols.title = i
			}
		case key == "genero" || key == "genre":
			if cols.genre < 0 {
				cols.genre = i
			}
		case strings.HasPrefix(key, "duracion") || strings.HasPrefix(key, "duration"):
			if cols.duration < 0 {
				cols.duration = i
			}
		}
	}
	return cols
}

func foldHeader(name string) string {
	name = strings.TrimPrefix(strings.TrimSpace(name), "\ufeff")
	key := slug.Make(name)
	return strings.NewReplacer("-", "", "_", "").Replace(key)
}

func cell(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
