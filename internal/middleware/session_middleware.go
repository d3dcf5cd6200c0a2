package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"

	"github.com/yourusername/spectra-quiz/internal/config"
)

// SessionIDKey - ключ контекста gin с идентификатором сессии викторины
const SessionIDKey = "session_id"

const sessionIDValue = "sid"

// SessionMiddleware выдаёт браузеру подписанную cookie с идентификатором сессии.
// Само состояние викторины хранится на сервере, в cookie только uuid.
type SessionMiddleware struct {
	store sessions.Store
	name  string
}

// NewSessionMiddleware создает middleware на основе CookieStore.
// Без секрета ключ генерируется на процесс: после перезапуска сессии теряются.
func NewSessionMiddleware(cfg config.SessionConfig) *SessionMiddleware {
	secret := []byte(cfg.Secret)
	if len(secret) == 0 {
		log.Printf("[SessionMiddleware] session.secret не задан, используется случайный ключ")
		secret = securecookie.GenerateRandomKey(32)
	}
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.TTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}

	name := cfg.CookieName
	if name == "" {
		name = "quiz_session"
	}
	return &SessionMiddleware{store: store, name: name}
}

// Handle гарантирует наличие идентификатора сессии в контексте
func (m *SessionMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := m.store.Get(c.Request, m.name)
		if err != nil {
			// Подпись не сошлась (сменился секрет): выдаём новую сессию
			log.Printf("[SessionMiddleware] Не удалось прочитать cookie '%s': %v", m.name, err)
		}

		sid, _ := session.Values[sessionIDValue].(string)
		if sid == "" {
			sid = uuid.New().String()
			session.Values[sessionIDValue] = sid
			if err := session.Save(c.Request, c.Writer); err != nil {
				log.Printf("[SessionMiddleware] Ошибка сохранения cookie: %v", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to start session"})
				return
			}
		}

		c.Set(SessionIDKey, sid)
		c.Next()
	}
}

// SessionID возвращает идентификатор сессии, установленный Handle
func SessionID(c *gin.Context) string {
	return c.GetString(SessionIDKey)
}
