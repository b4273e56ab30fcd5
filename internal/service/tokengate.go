// Package service содержит бизнес-логику приложения.
package service

import (
	"context"

	"runmix/internal/model"

	"go.uber.org/zap"
)

// TokenChecker определяет интерфейс проверки работоспособности токена
type TokenChecker interface {
	CheckToken(ctx context.Context, auth *model.Authentication) error
}

// TokenGate проверяет пригодность переданных учетных данных перед
// началом работы. Любая ошибка проверки трактуется как непригодный
// токен: лучше пропустить цикл, чем работать с мертвой авторизацией.
type TokenGate struct {
	checker TokenChecker
	logger  *zap.Logger
}

// NewTokenGate создает новый шлюз проверки токенов
func NewTokenGate(checker TokenChecker, logger *zap.Logger) *TokenGate {
	return &TokenGate{
		checker: checker,
		logger:  logger,
	}
}

// IsValid возвращает true, только если авторизация передана и ее токен
// прошел проверку живым запросом
func (g *TokenGate) IsValid(ctx context.Context, auth *model.Authentication) bool {
	if auth == nil {
		return false
	}

	if err := g.checker.CheckToken(ctx, auth); err != nil {
		g.logger.Warn("Spotify token check failed",
			zap.Int("user_id", auth.UserID),
			zap.Error(err))
		return false
	}

	return true
}
