package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cine-reservas-cli/store"
	"cine-reservas-cli/validate"
)

func newMoviesCmd(get func() *app) *cobra.Command {
	var genre string
	movies := &cobra.Command{
		Use:     "movies",
		Aliases: []string{"peliculas"},
		Short:   "List and maintain the movie catalog",
		RunE: func(c *cobra.Command, args []string) error {
			list, err := get().movies.List(genre)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				if genre != "" {
					fmt.Fprintf(c.OutOrStdout(), "No movies in genre %q.\n", genre)
				} else {
					fmt.Fprintln(c.OutOrStdout(), "The movie catalog is empty.")
				}
				return nil
			}
			renderMovies(c.OutOrStdout(), list)
			return nil
		},
	}
	movies.Flags().StringVarP(&genre, "genre", "g", "", "only movies of this genre (accents and case ignored)")
	movies.AddCommand(newMoviesAddCmd(get), newMoviesEditCmd(get), newMoviesDeleteCmd(get))
	return movies
}

func newMoviesAddCmd(get func() *app) *cobra.Command {
	var in store.MovieInput
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a movie; missing values are prompted for",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			var err error
			if in.Title == "" {
				if in.Title, err = promptText("Title", func(v string) error {
					_, err := validate.Title(v, "Title", 120)
					return err
				}); err != nil {
					return err
				}
			}
			if in.Genre == "" {
				if in.Genre, err = promptText("Genre", func(v string) error {
					_, err := validate.Title(v, "Genre", 60)
					return err
				}); err != nil {
					return err
				}
			}
			if in.Duration == "" {
				if in.Duration, err = promptText("Duration in minutes", discard(validate.Duration)); err != nil {
					return err
				}
			}

			movie, err := get().movies.Add(in)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.OutOrStdout(), "Movie %s added: %s.\n", movie.ID, movie.Title)
			return nil
		},
	}
	add.Flags().StringVar(&in.Title, "title", "", "movie title")
	add.Flags().StringVar(&in.Genre, "genre", "", "genre")
	add.Flags().StringVar(&in.Duration, "duration", "", "running time in minutes (1-600)")
	return add
}

func newMoviesEditCmd(get func() *app) *cobra.Command {
	var in store.MovieInput
	edit := &cobra.Command{
		Use:   "edit <movie-id>",
		Short: "Change the title, genre or duration of a movie",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			a := get()
			current, ok, err := a.movies.Lookup(args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: %s", store.ErrMovieNotFound, args[0])
			}
			if in == (store.MovieInput{}) {
				if in.Title, err = promptText(fmt.Sprintf("Title [%s]", current.Title), nil); err != nil {
					return err
				}
				if in.Genre, err = promptText(fmt.Sprintf("Genre [%s]", current.Genre), nil); err != nil {
					return err
				}
				if in.Duration, err = promptText(fmt.Sprintf("Duration [%s]", current.Duration), nil); err != nil {
					return err
				}
			}

			movie, err := a.movies.Update(current.ID, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.OutOrStdout(), "Movie %s updated: %s, %s, %s min.\n", movie.ID, movie.Title, movie.Genre, movie.Duration)
			return nil
		},
	}
	edit.Flags().StringVar(&in.Title, "title", "", "new title")
	edit.Flags().StringVar(&in.Genre, "genre", "", "new genre")
	edit.Flags().StringVar(&in.Duration, "duration", "", "new running time in minutes (1-600)")
	return edit
}

func newMoviesDeleteCmd(get func() *app) *cobra.Command {
	var yes bool
	del := &cobra.Command{
		Use:   "delete <movie-id>",
		Short: "Remove a movie from the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			a := get()
			current, ok, err := a.movies.Lookup(args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: %s", store.ErrMovieNotFound, args[0])
			}
			if !yes {
				confirmed, err := promptConfirm(fmt.Sprintf("Delete movie %s (%s)", current.ID, current.Title))
				if err != nil {
					return err
				}
				if !confirmed {
					fmt.Fprintln(c.OutOrStdout(), "Nothing deleted.")
					return nil
				}
			}

			movie, err := a.movies.Delete(current.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.OutOrStdout(), "Movie %s deleted: %s.\n", movie.ID, movie.Title)
			if ids := a.functionsShowing(movie.ID); len(ids) > 0 {
				fmt.Fprintf(c.OutOrStdout(), "Functions %s still show this movie.\n", strings.Join(ids, ", "))
			}
			return nil
		},
	}
	del.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return del
}
