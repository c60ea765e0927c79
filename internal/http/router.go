package http

import (
	"net/http"
	"time"

	"github.com/fjod/go_shop/internal/auth"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type RouterConfig struct {
	Tokens         *auth.TokenManager
	RequestTimeout time.Duration
	MetricsHandler http.Handler

	Auth      *AuthHandler
	Products  *ProductHandler
	Cart      *CartHandler
	Orders    *OrderHandler
	Favorites *FavoriteHandler
}

func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	authn := AuthMiddleware(cfg.Tokens)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", cfg.Auth.Register)
			r.Post("/login", cfg.Auth.Login)
			r.With(authn).Get("/me", cfg.Auth.Me)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", cfg.Products.ListProducts)
			r.Get("/{id}", cfg.Products.GetProduct)

			r.Group(func(r chi.Router) {
				r.Use(authn, AdminOnly)
				r.Post("/", cfg.Products.CreateProduct)
				r.Put("/{id}", cfg.Products.UpdateProduct)
				r.Delete("/{id}", cfg.Products.DeleteProduct)
			})
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(authn)
			r.Get("/", cfg.Cart.GetCart)
			r.Get("/count", cfg.Cart.GetCount)
			r.Post("/", cfg.Cart.AddItem)
			r.Put("/{productId}", cfg.Cart.UpdateItem)
			r.Delete("/{productId}", cfg.Cart.RemoveItem)
			r.Delete("/", cfg.Cart.ClearCart)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(authn)
			r.Post("/", cfg.Orders.CreateOrder)
			r.Get("/my", cfg.Orders.GetMyOrders)
			r.Get("/{id}", cfg.Orders.GetOrder)
			r.Put("/{id}/cancel", cfg.Orders.CancelOrder)

			r.Group(func(r chi.Router) {
				r.Use(AdminOnly)
				r.Get("/", cfg.Orders.ListOrders)
				r.Put("/{id}/status", cfg.Orders.UpdateStatus)
			})
		})

		r.Route("/favorites", func(r chi.Router) {
			r.Use(authn)
			r.Get("/", cfg.Favorites.ListFavorites)
			r.Post("/", cfg.Favorites.AddFavorite)
			r.Delete("/{productId}", cfg.Favorites.RemoveFavorite)
			r.Get("/check/{productId}", cfg.Favorites.CheckFavorite)
		})
	})

	return r
}
