package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/wenqilu/mealweek/internal/handler"
	"github.com/wenqilu/mealweek/internal/middleware"
	"github.com/wenqilu/mealweek/internal/plan"
	"github.com/wenqilu/mealweek/internal/push"
	"github.com/wenqilu/mealweek/internal/shopping"
	"github.com/wenqilu/mealweek/internal/store"
	ws "github.com/wenqilu/mealweek/internal/websocket"
)

type Server struct {
	db        *sql.DB
	hub       *ws.Hub
	manager   *plan.Manager
	recipeH   *handler.RecipeHandler
	planH     *handler.PlanHandler
	shoppingH *handler.ShoppingHandler
	pushH     *handler.PushHandler
	logger    *slog.Logger
}

func New(db *sql.DB, pushCfg push.Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))
	manager := plan.NewManager()

	recipeStore := store.NewRecipeStore(db)
	planStore := store.NewMealPlanStore(db)
	shoppingStore := store.NewShoppingStore(db)
	pushStore := store.NewPushStore(db)

	// Push is optional; without VAPID keys the routes are simply not
	// registered and list generation skips notification fan-out.
	var pushSvc *push.Service
	var pushH *handler.PushHandler
	if pushCfg.VAPIDPublicKey != "" && pushCfg.VAPIDPrivateKey != "" {
		pushSvc = push.NewService(pushCfg.VAPIDPublicKey, pushCfg.VAPIDPrivateKey)
		pushH = handler.NewPushHandler(pushStore, pushSvc, logger.With("component", "push_handler"))
	}
	notifier := handler.NewNotifier(pushStore, pushSvc, logger.With("component", "push"))

	aggregator := shopping.NewAggregator(recipeStore, logger.With("component", "aggregator"))
	materializer := shopping.NewMaterializer(aggregator, shoppingStore, logger.With("component", "materializer"))

	return &Server{
		db:        db,
		hub:       hub,
		manager:   manager,
		recipeH:   handler.NewRecipeHandler(recipeStore, logger.With("component", "recipe")),
		planH:     handler.NewPlanHandler(planStore, recipeStore, manager, hub, logger.With("component", "plan")),
		shoppingH: handler.NewShoppingHandler(materializer, shoppingStore, manager, planStore, hub, notifier, logger.With("component", "shopping")),
		pushH:     pushH,
		logger:    logger,
	}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)

	// Recipe API routes
	mux.HandleFunc("GET /api/recipes", s.recipeH.List)
	mux.HandleFunc("POST /api/recipes", s.recipeH.Create)
	mux.HandleFunc("GET /api/recipes/{id}", s.recipeH.Get)
	mux.HandleFunc("PUT /api/recipes/{id}", s.recipeH.Update)
	mux.HandleFunc("DELETE /api/recipes/{id}", s.recipeH.Delete)

	// Meal plan API routes
	mux.HandleFunc("GET /api/plans", s.planH.List)
	mux.HandleFunc("POST /api/plans", s.planH.Create)
	mux.HandleFunc("GET /api/plans/{id}", s.planH.Open)
	mux.HandleFunc("DELETE /api/plans/{id}", s.planH.Delete)
	mux.HandleFunc("POST /api/plans/{id}/close", s.planH.Close)
	mux.HandleFunc("POST /api/plans/{id}/save", s.planH.Save)
	mux.HandleFunc("POST /api/plans/{id}/items", s.planH.AddItem)
	mux.HandleFunc("PUT /api/plans/{id}/items/{item_id}/move", s.planH.MoveItem)
	mux.HandleFunc("DELETE /api/plans/{id}/items/{item_id}", s.planH.RemoveItem)
	mux.HandleFunc("POST /api/plans/{id}/clear", s.planH.ClearItems)
	mux.HandleFunc("PUT /api/plans/{id}/week-start", s.planH.SetWeekStart)
	mux.HandleFunc("POST /api/plans/{id}/shopping-list", s.shoppingH.Generate)

	// Shopping list API routes
	mux.HandleFunc("GET /api/shopping-lists/latest", s.shoppingH.Latest)
	mux.HandleFunc("POST /api/shopping-lists/{id}/items", s.shoppingH.AddItem)
	mux.HandleFunc("POST /api/shopping-lists/{id}/items/{item_id}/toggle", s.shoppingH.Toggle)
	mux.HandleFunc("DELETE /api/shopping-lists/{id}/items/{item_id}", s.shoppingH.DeleteItem)
	mux.HandleFunc("POST /api/shopping-lists/{id}/check-all", s.shoppingH.CheckAll)
	mux.HandleFunc("POST /api/shopping-lists/{id}/clear-completed", s.shoppingH.ClearCompleted)

	// Push notification API routes
	if s.pushH != nil {
		mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
		mux.HandleFunc("DELETE /api/push/subscribe", s.pushH.Unsubscribe)
		mux.HandleFunc("GET /api/push/vapid-key", s.pushH.GetVAPIDKey)
	}

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
