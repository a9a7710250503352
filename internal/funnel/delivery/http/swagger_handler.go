package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterSwaggerDocs registers Swagger documentation routes
// @Summary Swagger documentation
// @Description Swagger API documentation
// @Tags Swagger
// @Success 200 {string} string "Swagger UI"
// @Router /swagger/ [get]
func RegisterSwaggerDocs(router *mux.Router, swaggerHandler http.Handler) {
	router.PathPrefix("/swagger/").Handler(swaggerHandler)
}

// AddToWishlist godoc
// @Summary Add a product to the wishlist
// @Description Idempotent; the wishlist counter only moves when a new entry is created
// @Tags Wishlist
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{product_id=int} true "Product"
// @Success 200 {object} object{success=bool,message=string,data=object{product_id=int,added=bool}}
// @Failure 400 {object} object{success=bool,error=string,code=string}
// @Failure 401 {object} object{success=bool,error=string}
// @Failure 404 {object} object{success=bool,error=string,code=string}
// @Router /api/ecom/wishlist [post]
func (h *FunnelHandler) AddToWishlistDoc() {}

// RemoveFromWishlist godoc
// @Summary Remove a product from the wishlist
// @Tags Wishlist
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{product_id=int} false "Product"
// @Param product_id query int false "Product ID"
// @Success 200 {object} object{success=bool,message=string}
// @Failure 404 {object} object{success=bool,error=string,code=string}
// @Router /api/ecom/wishlist [delete]
func (h *FunnelHandler) RemoveFromWishlistDoc() {}

// GetWishlist godoc
// @Summary List the caller's wishlist, newest first
// @Tags Wishlist
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Page size, max 100; omit for all rows"
// @Param offset query int false "Offset"
// @Success 200 {object} object{success=bool,data=object{items=array,total=int}}
// @Router /api/ecom/wishlist [get]
func (h *FunnelHandler) GetWishlistDoc() {}

// AddToCart godoc
// @Summary Add a product to the cart
// @Description Quantities accumulate when the product is already in the cart; quantity defaults to 1
// @Tags Cart
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{product_id=int,quantity=int} true "Cart line"
// @Success 200 {object} object{success=bool,message=string,data=object}
// @Failure 400 {object} object{success=bool,error=string,code=string}
// @Failure 404 {object} object{success=bool,error=string,code=string}
// @Router /api/ecom/cart [post]
func (h *FunnelHandler) AddToCartDoc() {}

// UpdateCartItem godoc
// @Summary Set the quantity of a cart line
// @Tags Cart
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{product_id=int,quantity=int} true "Cart line"
// @Success 200 {object} object{success=bool,message=string}
// @Failure 400 {object} object{success=bool,error=string,code=string}
// @Failure 404 {object} object{success=bool,error=string,code=string}
// @Router /api/ecom/cart [put]
func (h *FunnelHandler) UpdateCartItemDoc() {}

// RemoveCartItem godoc
// @Summary Remove a cart line
// @Tags Cart
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{product_id=int} false "Product"
// @Param product_id query int false "Product ID"
// @Success 200 {object} object{success=bool,message=string}
// @Failure 404 {object} object{success=bool,error=string,code=string}
// @Router /api/ecom/cart [delete]
func (h *FunnelHandler) RemoveCartItemDoc() {}

// GetCart godoc
// @Summary Show the caller's cart at live prices
// @Tags Cart
// @Security BearerAuth
// @Produce json
// @Success 200 {object} object{success=bool,data=object{cart_id=int,items=array,total=string}}
// @Router /api/ecom/cart [get]
func (h *FunnelHandler) GetCartDoc() {}

// CreateOrder godoc
// @Summary Check out the cart
// @Description Converts the cart into an order with frozen prices and empties the cart
// @Tags Orders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{metadata=object} false "Order metadata"
// @Success 201 {object} object{success=bool,message=string,data=object{order_id=int,reference=string,total=string,status=string}}
// @Failure 400 {object} object{success=bool,error=string,code=string}
// @Failure 500 {object} object{success=bool,error=string,code=string}
// @Router /api/ecom/orders [post]
func (h *FunnelHandler) CreateOrderDoc() {}

// GetMyOrders godoc
// @Summary List the caller's orders, newest first
// @Tags Orders
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Page size, max 100; omit for all rows"
// @Param offset query int false "Offset"
// @Success 200 {object} object{success=bool,data=object{orders=array,total=int}}
// @Router /api/ecom/orders [get]
func (h *FunnelHandler) GetMyOrdersDoc() {}

// GetOrder godoc
// @Summary Get one of the caller's orders
// @Tags Orders
// @Security BearerAuth
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} object{success=bool,data=object}
// @Failure 400 {object} object{success=bool,error=string,code=string}
// @Failure 404 {object} object{success=bool,error=string,code=string}
// @Router /api/ecom/orders/{id} [get]
func (h *FunnelHandler) GetOrderDoc() {}

// RecordView godoc
// @Summary Record a product view
// @Description Anonymous viewers may send X-Viewer-Key to be deduplicated
// @Tags Products
// @Accept json
// @Produce json
// @Param request body object{product_id=int} true "Product"
// @Param X-Viewer-Key header string false "Anonymous viewer identity"
// @Success 200 {object} object{success=bool,message=string}
// @Failure 400 {object} object{success=bool,error=string,code=string}
// @Router /api/ecom/product/view [post]
func (h *FunnelHandler) RecordViewDoc() {}

// GetCounters godoc
// @Summary Get the funnel counters of a product
// @Tags Products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} object{success=bool,data=object{product_id=int,views=int,wishlist_count=int,sold_count=int}}
// @Failure 404 {object} object{success=bool,error=string,code=string}
// @Router /api/ecom/products/{id}/counters [get]
func (h *FunnelHandler) GetCountersDoc() {}

// ListAllOrders godoc
// @Summary List all orders (Admin only)
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Page size, max 100; omit for all rows"
// @Param offset query int false "Offset"
// @Success 200 {object} object{success=bool,data=object{orders=array,total=int}}
// @Failure 403 {object} object{success=bool,error=string}
// @Router /api/ecom/admin/orders [get]
func (h *FunnelHandler) ListAllOrdersDoc() {}

// ReconcileCounters godoc
// @Summary Recompute wishlist and sold counters from source rows (Admin only)
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} object{success=bool,message=string,data=object}
// @Failure 403 {object} object{success=bool,error=string}
// @Router /api/ecom/admin/counters/reconcile [post]
func (h *FunnelHandler) ReconcileCountersDoc() {}
