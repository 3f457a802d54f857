package model

import (
	"time"
)

type Preference struct {
	Key       string `sql:"primary_key"`
	Value     string
	UpdatedAt time.Time
}
