package query

// Re-export read models from readmodel package for backward compatibility
import "github.com/example/b2b-marketplace/internal/readmodel"

type ProductReadModel = readmodel.ProductReadModel
type CartItemReadModel = readmodel.CartItemReadModel
type CartReadModel = readmodel.CartReadModel
type OrderReadModel = readmodel.OrderReadModel
type UserReadModel = readmodel.UserReadModel
