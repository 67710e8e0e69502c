package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/Totarae/shortlinks/internal/model"
)

const (
	opInsert = "insert"
	opClick  = "click"
	opDelete = "delete"
)

// journalEntry одна строка файла хранилища.
type journalEntry struct {
	At      time.Time `json:"at"`
	Op      string    `json:"op"`
	Code    string    `json:"code"`
	LongURL string    `json:"long_url,omitempty"`
}

type memoryRecord struct {
	link *model.Link
	seq  uint64
}

// MemoryStore потокобезопасное хранилище ссылок в памяти.
// Если задан файл, каждое изменение дописывается в него строкой JSON,
// а при создании хранилища файл проигрывается заново.
type MemoryStore struct {
	data  map[string]memoryRecord
	now   func() time.Time
	file  string
	seq   uint64
	mutex sync.RWMutex
}

// NewMemoryStore создаёт хранилище без файла.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]memoryRecord),
		now:  time.Now,
	}
}

// NewFileStore создаёт хранилище, сохраняющее изменения в файл.
func NewFileStore(file string) (*MemoryStore, error) {
	s := NewMemoryStore()
	s.file = file
	if err := s.loadFromFile(); err != nil {
		return nil, err
	}
	return s, nil
}

// Insert сохраняет новую ссылку или возвращает model.ErrDuplicateCode.
func (s *MemoryStore) Insert(_ context.Context, code, longURL string) (*model.Link, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.data[code]; exists {
		return nil, model.ErrDuplicateCode
	}
	entry := journalEntry{At: s.now(), Op: opInsert, Code: code, LongURL: longURL}
	if err := s.appendToFile(entry); err != nil {
		return nil, err
	}
	return s.apply(entry).Clone(), nil
}

// Get возвращает ссылку по коду.
func (s *MemoryStore) Get(_ context.Context, code string) (*model.Link, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	rec, ok := s.data[code]
	if !ok {
		return nil, model.ErrLinkNotFound
	}
	return rec.link.Clone(), nil
}

// List возвращает все ссылки, новые первыми.
func (s *MemoryStore) List(_ context.Context) ([]*model.Link, error) {
	s.mutex.RLock()
	records := make([]memoryRecord, 0, len(s.data))
	for _, rec := range s.data {
		records = append(records, memoryRecord{link: rec.link.Clone(), seq: rec.seq})
	}
	s.mutex.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.link.CreatedAt.Equal(b.link.CreatedAt) {
			return a.link.CreatedAt.After(b.link.CreatedAt)
		}
		return a.seq > b.seq
	})

	links := make([]*model.Link, len(records))
	for i, rec := range records {
		links[i] = rec.link
	}
	return links, nil
}

// Delete удаляет ссылку и возвращает удалённую запись.
func (s *MemoryStore) Delete(_ context.Context, code string) (*model.Link, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	rec, ok := s.data[code]
	if !ok {
		return nil, model.ErrLinkNotFound
	}
	if err := s.appendToFile(journalEntry{At: s.now(), Op: opDelete, Code: code}); err != nil {
		return nil, err
	}
	delete(s.data, code)
	return rec.link, nil
}

// RecordClick увеличивает счётчик переходов и обновляет время последнего перехода.
func (s *MemoryStore) RecordClick(_ context.Context, code string) (*model.Link, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.data[code]; !ok {
		return nil, model.ErrLinkNotFound
	}
	entry := journalEntry{At: s.now(), Op: opClick, Code: code}
	if err := s.appendToFile(entry); err != nil {
		return nil, err
	}
	return s.apply(entry).Clone(), nil
}

// Ping всегда успешен: хранилище в памяти доступно, пока жив процесс.
func (s *MemoryStore) Ping(_ context.Context) error {
	return nil
}

// apply применяет запись журнала к данным. Вызывается под мьютексом.
func (s *MemoryStore) apply(e journalEntry) *model.Link {
	switch e.Op {
	case opInsert:
		s.seq++
		link := &model.Link{Code: e.Code, LongURL: e.LongURL, CreatedAt: e.At}
		s.data[e.Code] = memoryRecord{link: link, seq: s.seq}
		return link
	case opClick:
		rec, ok := s.data[e.Code]
		if !ok {
			return nil
		}
		at := e.At
		rec.link.Clicks++
		rec.link.LastClicked = &at
		return rec.link
	case opDelete:
		delete(s.data, e.Code)
	}
	return nil
}

// loadFromFile проигрывает журнал при старте.
func (s *MemoryStore) loadFromFile() error {
	file, err := os.Open(s.file)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to open storage file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var entry journalEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			return fmt.Errorf("storage file %s line %d: %w", s.file, line, err)
		}
		s.apply(entry)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read storage file: %w", err)
	}
	return nil
}

// appendToFile дописывает запись в журнал. Без файла ничего не делает.
func (s *MemoryStore) appendToFile(entry journalEntry) error {
	if s.file == "" {
		return nil
	}
	file, err := os.OpenFile(s.file, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open storage file: %w", err)
	}
	defer file.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	if _, err := file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write storage file: %w", err)
	}
	return nil
}
