package services

import "github.com/hextras/hextras-api/internal/models"

// SelectApplication resolves which applicant actually wins when the
// creator accepts one. Applicants whose aggregate reputation ties the
// picked one (same rating average and rating count) compete for the slot;
// the one with the most completed tasks wins, remaining ties fall to the
// first encountered (applications arrive oldest first).
func SelectApplication(pending []models.Application, picked models.Application) models.Application {
	winner := picked

	for _, app := range pending {
		if app.ID == winner.ID {
			continue
		}
		if app.Worker.RatingAverage != picked.Worker.RatingAverage ||
			app.Worker.RatingCount != picked.Worker.RatingCount {
			continue
		}
		if app.Worker.CompletedTasks > winner.Worker.CompletedTasks {
			winner = app
		}
	}

	return winner
}
