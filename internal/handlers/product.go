package handlers

import (
	"errors"
	"log"

	"kosh/internal/models"
	"kosh/internal/repositories"
	"kosh/internal/services/ledger"
	"kosh/internal/services/wallet"
	"kosh/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type ProductHandler struct {
	products      repositories.ProductRepository
	walletService wallet.Service
}

func NewProductHandler(products repositories.ProductRepository, walletService wallet.Service) *ProductHandler {
	return &ProductHandler{products: products, walletService: walletService}
}

// AddProduct creates a catalog entry.
func (h *ProductHandler) AddProduct(c *fiber.Ctx) error {
	var input struct {
		Name        string  `json:"name"`
		Price       float64 `json:"price"`
		Description string  `json:"description"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}
	if input.Name == "" || input.Price <= 0 {
		return utils.BadRequest(c, "Name and positive price are required")
	}

	product := &models.Product{
		Name:        input.Name,
		Price:       input.Price,
		Description: input.Description,
	}
	if err := h.products.Create(product); err != nil {
		log.Printf("add product error: %v", err)
		return utils.InternalError(c, "Internal server error")
	}
	return utils.Created(c, fiber.Map{"id": product.ID, "message": "Product added"})
}

// ListProducts returns the whole catalog.
func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	products, err := h.products.List()
	if err != nil {
		log.Printf("list products error: %v", err)
		return utils.InternalError(c, "Internal server error")
	}
	return utils.Success(c, products)
}

// Buy debits the product price from the caller's account.
func (h *ProductHandler) Buy(c *fiber.Ctx) error {
	var input struct {
		ProductID uint `json:"product_id"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}
	if input.ProductID == 0 {
		return utils.BadRequest(c, "Product ID is required")
	}

	balance, err := h.walletService.Purchase(c.UserContext(), sessionAccountID(c), input.ProductID)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrProductNotFound):
			return utils.BadRequest(c, "Invalid product")
		case errors.Is(err, ledger.ErrInsufficientFunds):
			return utils.BadRequest(c, "Insufficient balance")
		case errors.Is(err, ledger.ErrAccountNotFound):
			return utils.NotFound(c, "Account not found")
		default:
			log.Printf("buy product error: %v", err)
			return utils.InternalError(c, "Internal server error")
		}
	}
	return utils.Success(c, fiber.Map{"message": "Product purchased", "balance": balance})
}
