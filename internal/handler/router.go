package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/partyup/internal/middleware"
)

// HealthChecker はヘルスチェックに必要なインターフェース。
// *sql.DBがそのまま満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Authenticator     middleware.TokenAuthenticator
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger
	HTTPMetrics       middleware.HTTPMetricsRecorder

	// ヘルスチェック
	HealthChecker HealthChecker

	// ユーザー・認証
	UserService     UserServiceInterface
	AuthService     AuthServiceInterface
	PasswordService PasswordServiceInterface
	ResetURLBase    string

	// グループ・参加リクエスト
	GroupService   GroupServiceInterface
	RequestService RequestServiceInterface

	// メトリクス（nil可）
	LoginMetrics   LoginMetricsRecorder
	RequestMetrics RequestMetricsRecorder
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → Logging → CORS → (認証ルートのみ) Auth → RateLimit(General)
//
// ユーザー登録・ログイン・パスワードリセットはミドルウェアチェーンの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	if deps.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(deps.Logger, deps.HTTPMetrics))
	}
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	userHandler := NewUserHandler(deps.UserService)
	sessionHandler := NewSessionHandler(deps.AuthService, deps.LoginMetrics)
	passwordHandler := NewPasswordHandler(deps.PasswordService, deps.ResetURLBase)
	groupHandler := NewGroupHandler(deps.GroupService)
	requestHandler := NewRequestHandler(deps.RequestService, deps.RequestMetrics)

	// --- 認証不要のルート ---

	r.Get("/health", newHealthHandler(deps.HealthChecker))

	// ユーザー登録
	r.Post("/users", userHandler.Register)

	// ログイン（試行回数をIP単位で制限）
	r.With(deps.RateLimiter.LoginMiddleware()).Post("/sessions", sessionHandler.Login)

	// パスワードリセット（ログインと同じIP単位の制限を共有）
	r.With(deps.RateLimiter.LoginMiddleware()).Post("/forgot-password", passwordHandler.ForgotPassword)
	r.With(deps.RateLimiter.LoginMiddleware()).Post("/reset-password", passwordHandler.ResetPassword)

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Auth → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.Authenticator))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// プロフィール更新
		r.Put("/users/{id}", userHandler.Update)

		// ログアウト
		r.Delete("/sessions", sessionHandler.Logout)

		// グループ管理
		r.Route("/groups", func(r chi.Router) {
			r.Post("/", groupHandler.Create)
			r.Get("/", groupHandler.List)

			r.Route("/{id}", func(r chi.Router) {
				r.Patch("/", groupHandler.Update)
				r.Delete("/", groupHandler.Delete)

				// ロスター管理
				r.Delete("/players/{playerId}", groupHandler.RemovePlayer)

				// 参加リクエスト
				r.Route("/requests", func(r chi.Router) {
					r.Post("/", requestHandler.Create)
					r.Get("/", requestHandler.List)
					r.Post("/{requestId}/accept", requestHandler.Accept)
					r.Delete("/{requestId}", requestHandler.Reject)
				})
			})
		})
	})

	return r
}

// newHealthHandler はヘルスチェックエンドポイントのハンドラーを返す。
// DB接続を確認し、到達できない場合は503を返す。checkerはnilでもよい。
// GET /health
func newHealthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker != nil {
			if err := checker.PingContext(r.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
