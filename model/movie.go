package model

type Movie struct {
	ID       string `json:"id"`
	Title    string `json:"titulo"`
	Genre    string `json:"genero"`
	Duration string `json:"duracion"`
}
