package cartControllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/zeriouslyzen/cosmic-sub000/cart"
	"github.com/zeriouslyzen/cosmic-sub000/middleware"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// CartWebSocket streams cart snapshots to the storefront: one on connect,
// then one after every reload (mutations and the polling refresher both
// trigger reloads). Replaces client-side re-fetch loops with push.
// GET /user/cart/ws
func CartWebSocket(carts *cart.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := carts.Session(c.Request.Context(), middleware.UserID(c))
		if err != nil {
			cartError(c, err)
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		updates, release := sess.Subscribe()
		defer release()
		if err := conn.WriteJSON(sess.Snapshot()); err != nil {
			return
		}

		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case snap, ok := <-updates:
				if !ok {
					return
				}
				if err := conn.WriteJSON(snap); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}
}
