package commands

import (
	"context"
	"fmt"

	"github.com/mhotoys/shopctl/internal/models"
	"github.com/mhotoys/shopctl/internal/session"
	"github.com/mhotoys/shopctl/internal/validate"
)

// AdminProductsCmd manages the catalog.
type AdminProductsCmd struct {
	Create AdminProductsCreateCmd `cmd:"" help:"Add a catalog product"`
	Update AdminProductsUpdateCmd `cmd:"" help:"Update a catalog product"`
	Delete AdminProductsDeleteCmd `cmd:"" help:"Remove a catalog product"`
}

// AdminProductsCreateCmd adds a product.
type AdminProductsCreateCmd struct {
	Name        string  `help:"Product name" required:""`
	Description string  `help:"Product description"`
	Price       float64 `help:"Product price" required:""`
	AgeRange    string  `help:"Suggested age range" name:"age-range"`
	ImageURL    string  `help:"Product image URL" name:"image-url"`
}

func (a *AdminProductsCreateCmd) Run(ctx context.Context, globals *Globals) error {
	product := models.Product{
		Name:        a.Name,
		Description: a.Description,
		Price:       a.Price,
		AgeRange:    a.AgeRange,
		ImageURL:    a.ImageURL,
	}
	if err := validate.Product(product); err != nil {
		return fmt.Errorf("invalid product: %w", err)
	}

	app, err := setup(ctx, globals, "admin products create")
	if err != nil {
		return err
	}

	if err := app.require("admin products create", session.RequireAdmin); err != nil {
		return err
	}

	var created models.Product
	if err := app.Client.Post(ctx, "/admin/products", nil, product, &created); err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	fmt.Printf("Product %q created with ID %d.\n", created.Name, created.ProductID)
	return nil
}

// AdminProductsUpdateCmd updates a product in place.
type AdminProductsUpdateCmd struct {
	ID          int64   `arg:"" help:"Product ID"`
	Name        string  `help:"Product name" required:""`
	Description string  `help:"Product description"`
	Price       float64 `help:"Product price" required:""`
	AgeRange    string  `help:"Suggested age range" name:"age-range"`
	ImageURL    string  `help:"Product image URL" name:"image-url"`
}

func (a *AdminProductsUpdateCmd) Run(ctx context.Context, globals *Globals) error {
	product := models.Product{
		ProductID:   a.ID,
		Name:        a.Name,
		Description: a.Description,
		Price:       a.Price,
		AgeRange:    a.AgeRange,
		ImageURL:    a.ImageURL,
	}
	if err := validate.Product(product); err != nil {
		return fmt.Errorf("invalid product: %w", err)
	}

	app, err := setup(ctx, globals, "admin products update")
	if err != nil {
		return err
	}

	if err := app.require("admin products update", session.RequireAdmin); err != nil {
		return err
	}

	path := fmt.Sprintf("/admin/products/%d", a.ID)
	if err := app.Client.Put(ctx, path, nil, product, nil); err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	fmt.Printf("Product %d updated.\n", a.ID)
	return nil
}

// AdminProductsDeleteCmd removes a product.
type AdminProductsDeleteCmd struct {
	ID int64 `arg:"" help:"Product ID"`
}

func (a *AdminProductsDeleteCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := setup(ctx, globals, "admin products delete")
	if err != nil {
		return err
	}

	if err := app.require("admin products delete", session.RequireAdmin); err != nil {
		return err
	}

	path := fmt.Sprintf("/admin/products/%d", a.ID)
	if err := app.Client.Delete(ctx, path); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	fmt.Printf("Product %d deleted.\n", a.ID)
	return nil
}
