package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"pulseadmin/cmd/pulse/ui"
	"pulseadmin/internal/api"
	"pulseadmin/internal/catalog"
	"pulseadmin/internal/logging"
	"pulseadmin/internal/session"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// maxParallelRequests bounds concurrent show and delete requests.
const maxParallelRequests = 4

var (
	productsJSON bool
	deleteYes    bool

	// create/update field flags, in form order
	productName        string
	productModel       string
	productOrigin      string
	productBrand       string
	productPrice       string
	productQuantity    string
	productDescription string
	productImage       string
)

// productFlagFields maps field flags to the form fields they set.
var productFlagFields = []struct {
	flag  string
	field catalog.Field
	value *string
}{
	{"name", catalog.FieldName, &productName},
	{"model", catalog.FieldModel, &productModel},
	{"origin", catalog.FieldOrigin, &productOrigin},
	{"brand", catalog.FieldBrand, &productBrand},
	{"price", catalog.FieldPrice, &productPrice},
	{"quantity", catalog.FieldQuantity, &productQuantity},
	{"description", catalog.FieldDescription, &productDescription},
}

var productsCmd = &cobra.Command{
	Use:     "products",
	Aliases: []string{"p"},
	Short:   "List, inspect and edit catalog products",
}

var productsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all products",
	Args:    cobra.NoArgs,
	RunE:    runProductsList,
}

var productsShowCmd = &cobra.Command{
	Use:   "show <id>...",
	Short: "Show one or more products",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runProductsShow,
}

var productsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a product",
	Long: `Creates a product from the field flags. --name and --model are required.

--image takes either an http(s) URL, stored as is, or a local image file,
uploaded with the product:
  pulse products create --name "SPO2 Sensor" --model YM2000 --price 150 --image ./spo2.jpg`,
	Args: cobra.NoArgs,
	RunE: runProductsCreate,
}

var productsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a product",
	Long: `Loads the product, applies the given field flags and saves it.
Fields without a flag keep their current value. --image "" removes the image.`,
	Args: cobra.ExactArgs(1),
	RunE: runProductsUpdate,
}

var productsDeleteCmd = &cobra.Command{
	Use:     "delete <id>...",
	Aliases: []string{"rm"},
	Short:   "Delete one or more products",
	Args:    cobra.MinimumNArgs(1),
	RunE:    runProductsDelete,
}

func init() {
	productsListCmd.Flags().BoolVar(&productsJSON, "json", false, "Print JSON instead of a table")
	productsShowCmd.Flags().BoolVar(&productsJSON, "json", false, "Print JSON instead of rendered markdown")
	productsDeleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Do not ask for confirmation")

	for _, c := range []*cobra.Command{productsCreateCmd, productsUpdateCmd} {
		for _, f := range productFlagFields {
			c.Flags().StringVar(f.value, f.flag, "", f.field.Label())
		}
		c.Flags().StringVar(&productImage, "image", "", "Image URL or local image file")
	}

	productsCmd.AddCommand(productsListCmd)
	productsCmd.AddCommand(productsShowCmd)
	productsCmd.AddCommand(productsCreateCmd)
	productsCmd.AddCommand(productsUpdateCmd)
	productsCmd.AddCommand(productsDeleteCmd)
}

// userError replaces transport errors with the message the console shows.
func userError(err error) error {
	if err == nil {
		return nil
	}
	return errors.New(api.UserMessage(err))
}

func runProductsList(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd)
	defer stop()

	return withClient(true, func(_ *session.Session, c *api.Client) error {
		list := catalog.NewList()
		defer list.Close()
		if err := list.Fetch(ctx, c); err != nil {
			return userError(err)
		}
		items := list.Items()

		out := cmd.OutOrStdout()
		if productsJSON {
			return writeJSON(out, items)
		}

		s := cliStyles()
		t := ui.NewSimpleTable("", []string{"ID", "Name", "Model", "Origin", "Price", "Qty", "Stock"})
		t.Empty = "No products yet. Create one with 'pulse products create'."
		for _, p := range items {
			t.AddRow(p.ID, p.Name, p.Model, p.Origin, p.Price.StringFixed(2), strconv.Itoa(p.Quantity), s.StockBadge(p.Stock()))
		}
		fmt.Fprint(out, t.View(s))

		if len(items) > 0 {
			sum := catalog.Summarize(items)
			fmt.Fprintln(out, s.Muted.Render(fmt.Sprintf("%d products, %d units, inventory value %s",
				sum.Products, sum.Units, sum.InventoryValue.StringFixed(2))))
		}
		return nil
	})
}

func runProductsShow(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd)
	defer stop()

	return withClient(true, func(_ *session.Session, c *api.Client) error {
		products := make([]catalog.Product, len(args))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(maxParallelRequests)
		for i, id := range args {
			g.Go(func() error {
				p, err := c.GetProduct(gctx, id)
				if err != nil {
					return fmt.Errorf("%s: %s", id, api.UserMessage(err))
				}
				products[i] = p
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if productsJSON {
			if len(products) == 1 {
				return writeJSON(out, products[0])
			}
			return writeJSON(out, products)
		}

		r := ui.NewMarkdownRenderer(ui.ThemeFor(cfg.IsDarkTheme()), 80)
		for _, p := range products {
			fmt.Fprint(out, ui.RenderMarkdown(r, productMarkdown(p)))
		}
		return nil
	})
}

// productMarkdown is the card printed by "products show".
func productMarkdown(p catalog.Product) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", p.Name)
	b.WriteString("| Field | Value |\n|---|---|\n")
	row := func(k, v string) {
		if v == "" {
			v = "-"
		}
		fmt.Fprintf(&b, "| %s | %s |\n", k, strings.ReplaceAll(v, "|", `\|`))
	}
	row("ID", p.ID)
	row("Model", p.Model)
	row("Origin", p.Origin)
	row("Brand", p.Brand)
	row("Price", p.Price.StringFixed(2))
	row("Quantity", fmt.Sprintf("%d (%s)", p.Quantity, p.Stock()))
	row("Image", p.Image.String())
	if p.CreatedAt != nil {
		row("Created", p.CreatedAt.Format("2006-01-02 15:04"))
	}
	if d := strings.TrimSpace(p.Description); d != "" {
		b.WriteString("\n")
		b.WriteString(d)
		b.WriteString("\n")
	}
	return b.String()
}

func runProductsCreate(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd)
	defer stop()

	return withClient(true, func(_ *session.Session, c *api.Client) error {
		form := catalog.NewForm("")
		defer form.Close()
		if err := applyProductFlags(cmd, form); err != nil {
			return err
		}
		p, err := form.Submit(ctx, c)
		if err != nil {
			return userError(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %q (%s)\n", p.Name, p.ID)
		return nil
	})
}

func runProductsUpdate(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd)
	defer stop()

	return withClient(true, func(_ *session.Session, c *api.Client) error {
		form := catalog.NewForm(args[0])
		defer form.Close()
		if err := form.Load(ctx, c); err != nil {
			return userError(err)
		}
		if err := applyProductFlags(cmd, form); err != nil {
			return err
		}
		p, err := form.Submit(ctx, c)
		if err != nil {
			return userError(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %q (%s)\n", p.Name, p.ID)
		return nil
	})
}

// applyProductFlags copies every flag given on the command line into form.
func applyProductFlags(cmd *cobra.Command, form *catalog.Form) error {
	for _, f := range productFlagFields {
		if !cmd.Flags().Changed(f.flag) {
			continue
		}
		if err := form.Set(f.field, *f.value); err != nil {
			return fmt.Errorf("--%s: %s", f.flag, api.UserMessage(err))
		}
	}

	if !cmd.Flags().Changed("image") {
		return nil
	}
	img := strings.TrimSpace(productImage)
	switch {
	case img == "":
		return form.ClearImage()
	case catalog.IsImageURL(img):
		return form.Set(catalog.FieldImage, img)
	default:
		if err := form.Attach(img); err != nil {
			return fmt.Errorf("--image: %s", api.UserMessage(err))
		}
		return nil
	}
}

func runProductsDelete(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd)
	defer stop()

	return withClient(true, func(_ *session.Session, c *api.Client) error {
		list := catalog.NewList()
		defer list.Close()
		if err := list.Fetch(ctx, c); err != nil {
			return userError(err)
		}

		ids := dedupe(args)
		items := list.Items()
		var names []string
		for _, id := range ids {
			p, idx := catalog.FindByID(items, id)
			if idx < 0 {
				return fmt.Errorf("product %s not found", id)
			}
			names = append(names, fmt.Sprintf("%q", p.Name))
		}

		out := cmd.OutOrStdout()
		if !deleteYes {
			ok, err := confirm(cmd, fmt.Sprintf("Delete %s? This cannot be undone. [y/N] ", strings.Join(names, ", ")))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(out, "Aborted.")
				return nil
			}
		}

		var (
			mu     sync.Mutex
			failed int
		)
		var g errgroup.Group
		g.SetLimit(maxParallelRequests)
		for i, id := range ids {
			g.Go(func() error {
				err := list.Delete(ctx, c, id, nil)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					failed++
					fmt.Fprintf(out, "Failed to delete %s (%s): %s\n", names[i], id, api.UserMessage(err))
					return nil
				}
				fmt.Fprintf(out, "Deleted %s (%s)\n", names[i], id)
				return nil
			})
		}
		_ = g.Wait()

		logging.Catalog("cli: deleted %d of %d products", len(ids)-failed, len(ids))
		if failed > 0 {
			return fmt.Errorf("%d of %d deletes failed", failed, len(ids))
		}
		return nil
	})
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func confirm(cmd *cobra.Command, prompt string) (bool, error) {
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
