package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cine-reservas-cli/model"
	"cine-reservas-cli/validate"
)

func TestMovieCatalog_TolerantHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "peliculas.csv")
	writeFile(t, path, "ID,Título,Género,Duración (min)\n1,Alien,Terror,117\n2,Coco,Animación,105\n,Sin id,Drama,90\n")
	catalog := NewMovieCatalog(path, nil)

	movies, err := catalog.Load()
	require.NoError(t, err)
	require.Len(t, movies, 2)
	assert.Equal(t, "Alien", movies[0].Title)
	assert.Equal(t, "117", movies[0].Duration)

	movie, ok, err := catalog.Lookup("2")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Coco", movie.Title)

	_, ok, err = catalog.Lookup("9")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMovieCatalog_ListByGenreIgnoresAccents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "peliculas.csv")
	writeFile(t, path, "id_pelicula,titulo,genero,duracion_min\n1,Coco,Animación,105\n2,Alien,Terror,117\n")
	catalog := NewMovieCatalog(path, nil)

	movies, err := catalog.List("animacion")
	require.NoError(t, err)
	require.Len(t, movies, 1)
	assert.Equal(t, "Coco", movies[0].Title)

	all, err := catalog.List("")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestMovieCatalog_MissingIDColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "peliculas.csv")
	writeFile(t, path, "titulo,genero\nCoco,Animación\n")

	_, err := NewMovieCatalog(path, nil).Load()
	require.ErrorIs(t, err, ErrUnexpectedHeader)
}

func TestMovieCatalog_MissingFile(t *testing.T) {
	movies, err := NewMovieCatalog(filepath.Join(t.TempDir(), "none.csv"), nil).Load()
	require.NoError(t, err)
	assert.Empty(t, movies)
}

func TestMovieCatalog_AddCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "peliculas.csv")
	catalog := NewMovieCatalog(path, nil)

	first, err := catalog.Add(MovieInput{Title: " Coco ", Genre: "Animación", Duration: "105"})
	require.NoError(t, err)
	assert.Equal(t, model.Movie{ID: "1", Title: "Coco", Genre: "Animación", Duration: "105"}, first)
	second, err := catalog.Add(MovieInput{Title: "Alien: El octavo pasajero", Genre: "Terror", Duration: "117"})
	require.NoError(t, err)
	assert.Equal(t, "2", second.ID)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ID,Titulo,Genero,Duracion_min\n1,Coco,Animación,105\n2,Alien: El octavo pasajero,Terror,117\n", string(data))
}

func TestMovieCatalog_AddValidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "peliculas.csv")
	catalog := NewMovieCatalog(path, nil)

	var verrs validate.Errors
	for _, in := range []MovieInput{
		{Title: "", Genre: "Drama", Duration: "90"},
		{Title: "Coco!", Genre: "Drama", Duration: "90"},
		{Title: "Coco", Genre: strings.Repeat("x", 61), Duration: "90"},
		{Title: "Coco", Genre: "Drama", Duration: "0"},
		{Title: "Coco", Genre: "Drama", Duration: "601"},
	} {
		_, err := catalog.Add(in)
		assert.ErrorAs(t, err, &verrs, "input %+v", in)
	}
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestMovieCatalog_EditsKeepOtherRowsVerbatim(t *testing.T) {
	path := filepath.Join(t.TempDir(), "peliculas.csv")
	writeFile(t, path, "\ufeffID,Título,Género,Duración (min),Notas\r\n"+
		"7,Alien,Terror,117,clásico\r\n"+
		"9,Coco,Animación,105,\r\n"+
		"x,ro\"to,Drama,90\r\n")
	catalog := NewMovieCatalog(path, nil)

	added, err := catalog.Add(MovieInput{Title: "Up", Genre: "Animación", Duration: "96"})
	require.NoError(t, err)
	assert.Equal(t, "10", added.ID)

	updated, err := catalog.Update("7", MovieInput{Duration: "118"})
	require.NoError(t, err)
	assert.Equal(t, model.Movie{ID: "7", Title: "Alien", Genre: "Terror", Duration: "118"}, updated)

	deleted, err := catalog.Delete("9")
	require.NoError(t, err)
	assert.Equal(t, "Coco", deleted.Title)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "\ufeffID,Título,Género,Duración (min),Notas\r\n"+
		"7,Alien,Terror,118,clásico\n"+
		"x,ro\"to,Drama,90\r\n"+
		"10,Up,Animación,96,\n", string(data))
}

func TestMovieCatalog_UpdateAndDeleteErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "peliculas.csv")
	writeFile(t, path, "id,titulo,genero,duracion\n1,Coco,Animación,105\n")
	catalog := NewMovieCatalog(path, nil)

	_, err := catalog.Update("2", MovieInput{Title: "Up"})
	assert.ErrorIs(t, err, ErrMovieNotFound)
	_, err = catalog.Delete("2")
	assert.ErrorIs(t, err, ErrMovieNotFound)

	var verrs validate.Errors
	_, err = catalog.Update("1", MovieInput{Duration: "larga"})
	assert.ErrorAs(t, err, &verrs)

	movie, ok, err := catalog.Lookup("1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "105", movie.Duration)

	noGenre := filepath.Join(t.TempDir(), "peliculas.csv")
	writeFile(t, noGenre, "id,titulo\n1,Coco\n")
	_, err = NewMovieCatalog(noGenre, nil).Add(MovieInput{Title: "Up", Genre: "Drama", Duration: "96"})
	assert.ErrorIs(t, err, ErrUnexpectedHeader)
}
