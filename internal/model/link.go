package model

import (
	"errors"
	"time"
)

var (
	// ErrLinkNotFound возвращается хранилищем, если ссылки с таким кодом нет.
	ErrLinkNotFound = errors.New("link not found")
	// ErrDuplicateCode возвращается хранилищем при нарушении уникальности кода.
	ErrDuplicateCode = errors.New("code already exists")
)

// Link представляет запись таблицы links.
type Link struct {
	CreatedAt   time.Time
	LastClicked *time.Time
	Code        string
	LongURL     string
	Clicks      int64
}

// Clone возвращает копию записи, не разделяющую LastClicked с оригиналом.
func (l *Link) Clone() *Link {
	if l == nil {
		return nil
	}
	c := *l
	if l.LastClicked != nil {
		t := *l.LastClicked
		c.LastClicked = &t
	}
	return &c
}
