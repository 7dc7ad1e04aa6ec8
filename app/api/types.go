package api

import (
	"github.com/lysyi3m/courtrss/app/database"
	"github.com/lysyi3m/courtrss/app/tasks"
)

type Handler struct {
	scheduler tasks.SchedulerInterface
	journal   database.NotificationRepository // nil when the journal is disabled
	version   string
}
