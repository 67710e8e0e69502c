package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Totarae/shortlinks/internal/model"
	"github.com/Totarae/shortlinks/internal/util"
	"go.uber.org/zap"
)

//go:generate mockgen -destination=mocks/mock_repository.go -package=mocks github.com/Totarae/shortlinks/internal/service Repository

// Repository хранилище ссылок. Все изменения одной записи атомарны.
type Repository interface {
	Insert(ctx context.Context, code, longURL string) (*model.Link, error)
	Get(ctx context.Context, code string) (*model.Link, error)
	List(ctx context.Context) ([]*model.Link, error)
	Delete(ctx context.Context, code string) (*model.Link, error)
	RecordClick(ctx context.Context, code string) (*model.Link, error)
	Ping(ctx context.Context) error
}

// CodeGenerator выдаёт коды для ссылок без пользовательского кода.
type CodeGenerator interface {
	NewCode() (string, error)
}

// DefaultTimeout ограничение по времени на одну операцию с хранилищем.
const DefaultTimeout = 5 * time.Second

// LinkService реализует создание, чтение, удаление ссылок и переход по ним.
type LinkService struct {
	Repo    Repository
	Gen     CodeGenerator
	Logger  *zap.Logger
	Timeout time.Duration
}

// NewLinkService создаёт сервис. Нулевой timeout заменяется на DefaultTimeout.
func NewLinkService(repo Repository, gen CodeGenerator, logger *zap.Logger, timeout time.Duration) *LinkService {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LinkService{
		Repo:    repo,
		Gen:     gen,
		Logger:  logger,
		Timeout: timeout,
	}
}

// Create проверяет входные данные и сохраняет новую ссылку.
// Пустой code означает, что код будет сгенерирован. Коллизия сгенерированного
// кода возвращается как ErrConflict без повторной попытки.
func (s *LinkService) Create(ctx context.Context, longURL, code string) (*model.Link, error) {
	if err := validateLongURL(longURL); err != nil {
		return nil, err
	}

	if code != "" {
		if !util.IsValidCustomCode(code) {
			return nil, fmt.Errorf("%w: code must be 6-8 alphanumeric characters", ErrInvalidInput)
		}
	} else {
		generated, err := s.Gen.NewCode()
		if err != nil {
			return nil, fmt.Errorf("%w: generate code: %v", ErrStorage, err)
		}
		code = generated
	}

	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	link, err := s.Repo.Insert(ctx, code, longURL)
	if err != nil {
		if errors.Is(err, model.ErrDuplicateCode) {
			return nil, fmt.Errorf("%w: %s", ErrConflict, code)
		}
		return nil, s.storageError("insert", code, err)
	}
	return link, nil
}

// List возвращает все ссылки, новые первыми.
func (s *LinkService) List(ctx context.Context) ([]*model.Link, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	links, err := s.Repo.List(ctx)
	if err != nil {
		return nil, s.storageError("list", "", err)
	}
	return links, nil
}

// Get возвращает ссылку по коду.
func (s *LinkService) Get(ctx context.Context, code string) (*model.Link, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	link, err := s.Repo.Get(ctx, code)
	if err != nil {
		return nil, s.translate("get", code, err)
	}
	return link, nil
}

// Delete удаляет ссылку и возвращает удалённую запись.
func (s *LinkService) Delete(ctx context.Context, code string) (*model.Link, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	link, err := s.Repo.Delete(ctx, code)
	if err != nil {
		return nil, s.translate("delete", code, err)
	}
	return link, nil
}

// Redirect находит ссылку, учитывает переход и возвращает адрес назначения.
// Если ссылку удалили между чтением и учётом перехода, возвращается ErrNotFound.
// Прочие ошибки учёта только логируются: переход выполняется всё равно.
func (s *LinkService) Redirect(ctx context.Context, code string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	link, err := s.Repo.Get(ctx, code)
	if err != nil {
		return "", s.translate("redirect lookup", code, err)
	}

	if _, err := s.Repo.RecordClick(ctx, code); err != nil {
		if errors.Is(err, model.ErrLinkNotFound) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, code)
		}
		s.Logger.Warn("failed to record click",
			zap.String("code", code),
			zap.Error(err),
		)
	}
	return link.LongURL, nil
}

// Ping проверяет доступность хранилища.
func (s *LinkService) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	if err := s.Repo.Ping(ctx); err != nil {
		return s.storageError("ping", "", err)
	}
	return nil
}

func (s *LinkService) translate(op, code string, err error) error {
	if errors.Is(err, model.ErrLinkNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, code)
	}
	return s.storageError(op, code, err)
}

func (s *LinkService) storageError(op, code string, err error) error {
	s.Logger.Error("storage operation failed",
		zap.String("op", op),
		zap.String("code", code),
		zap.Error(err),
	)
	return fmt.Errorf("%w: %s: %v", ErrStorage, op, err)
}

func validateLongURL(raw string) error {
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return fmt.Errorf("%w: URL must start with https:// or http://", ErrInvalidInput)
	}
	parsed, err := url.ParseRequestURI(raw)
	if err != nil || parsed.Host == "" {
		return fmt.Errorf("%w: invalid URL format", ErrInvalidInput)
	}
	return nil
}
