package main

import (
	"log/slog"
	"net/http"

	"github.com/vancomm/hypermines/internal/handlers"
)

func (app *application) handleFetchHighscores(w http.ResponseWriter, r *http.Request) {
	dto, err := handlers.ParseHighscoreDTO(r.URL.Query())
	if err != nil {
		app.badRequest(w, err)
		return
	}

	filter := dto.Filter()
	highscores, err := app.repo.GetHighscores(r.Context(), filter)
	if err != nil {
		app.internalError(w, "failed to fetch highscores",
			slog.Any("error", err), slog.Any("filter", filter))
		return
	}

	handlers.SendJSONOrLog(w, app.logger, highscores)
}
