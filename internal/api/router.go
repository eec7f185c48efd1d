package api

import (
	"log"
	"net/http"
	"strings"

	"github.com/example/b2b-marketplace/internal/api/middleware"
	"github.com/example/b2b-marketplace/internal/auth"
	"github.com/example/b2b-marketplace/internal/domain/user"
)

func NewRouter(handlers *Handlers, authHandlers *AuthHandlers, jwtService *auth.JWTService) http.Handler {
	mux := http.NewServeMux()

	requireAuth := middleware.AuthMiddleware(jwtService)
	requireSeller := middleware.RequireRole(string(user.RoleSeller))
	requireBuyer := middleware.RequireRole(string(user.RoleBuyer))
	requireModerator := middleware.RequireRole(string(user.RoleAdmin), string(user.RoleSubAdmin))

	// Auth
	mux.HandleFunc("/auth/register", methodHandler(map[string]http.HandlerFunc{
		http.MethodPost: authHandlers.Register,
	}))
	mux.HandleFunc("/auth/login", methodHandler(map[string]http.HandlerFunc{
		http.MethodPost: authHandlers.Login,
	}))
	mux.HandleFunc("/auth/logout", methodHandler(map[string]http.HandlerFunc{
		http.MethodPost: authHandlers.Logout,
	}))
	mux.Handle("/auth/me", requireAuth(methodHandler(map[string]http.HandlerFunc{
		http.MethodGet: authHandlers.Me,
	})))
	mux.Handle("/auth/password", requireAuth(methodHandler(map[string]http.HandlerFunc{
		http.MethodPut: authHandlers.ChangePassword,
	})))

	// Products
	mux.Handle("/products", requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handlers.GetProducts(w, r)
		case http.MethodPost:
			requireSeller(http.HandlerFunc(handlers.CreateProduct)).ServeHTTP(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))

	mux.Handle("/products/mine", requireAuth(requireSeller(methodHandler(map[string]http.HandlerFunc{
		http.MethodGet: handlers.GetMyProducts,
	}))))

	mux.Handle("/products/pending", requireAuth(requireModerator(methodHandler(map[string]http.HandlerFunc{
		http.MethodGet: handlers.GetPendingProducts,
	}))))

	mux.Handle("/products/", requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		switch {
		case strings.HasSuffix(path, "/moderate") && r.Method == http.MethodPost:
			requireModerator(http.HandlerFunc(handlers.ModerateProduct)).ServeHTTP(w, r)
		case r.Method == http.MethodGet:
			handlers.GetProduct(w, r)
		case r.Method == http.MethodPut:
			handlers.UpdateProduct(w, r)
		case r.Method == http.MethodDelete:
			handlers.DeleteProduct(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))

	// Cart (buyers only)
	mux.Handle("/cart", requireAuth(requireBuyer(methodHandler(map[string]http.HandlerFunc{
		http.MethodGet:    handlers.GetCart,
		http.MethodDelete: handlers.ClearCart,
	}))))

	mux.Handle("/cart/items", requireAuth(requireBuyer(methodHandler(map[string]http.HandlerFunc{
		http.MethodPost: handlers.AddToCart,
	}))))

	mux.Handle("/cart/items/", requireAuth(requireBuyer(methodHandler(map[string]http.HandlerFunc{
		http.MethodPut:    handlers.UpdateCartItem,
		http.MethodDelete: handlers.RemoveFromCart,
	}))))

	// Orders
	mux.Handle("/orders", requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handlers.GetOrders(w, r)
		case http.MethodPost:
			requireBuyer(http.HandlerFunc(handlers.CreateOrder)).ServeHTTP(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))

	mux.Handle("/orders/checkout", requireAuth(requireBuyer(methodHandler(map[string]http.HandlerFunc{
		http.MethodPost: handlers.Checkout,
	}))))

	mux.Handle("/orders/", requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		switch {
		case strings.HasSuffix(path, "/transition") && r.Method == http.MethodPost:
			handlers.TransitionOrder(w, r)
		case strings.HasSuffix(path, "/approval") && r.Method == http.MethodPost:
			requireModerator(http.HandlerFunc(handlers.ApproveRejectOrder)).ServeHTTP(w, r)
		case strings.HasSuffix(path, "/confirm") && r.Method == http.MethodPost:
			requireSeller(http.HandlerFunc(handlers.ConfirmOrder)).ServeHTTP(w, r)
		case r.Method == http.MethodGet:
			handlers.GetOrder(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))

	return withLogging(mux)
}

// methodHandler dispatches by HTTP method, rejecting everything else
func methodHandler(routes map[string]http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := routes[r.Method]; ok {
			handler(w, r)
			return
		}
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("[API] %s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}
