// ABOUTME: mart is a terminal storefront client for the Daily Mart backend.
// ABOUTME: It drives the shop library: auth, cart, favorites, orders, checkout.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"dailymart/shop"
)

func main() {
	log.SetFlags(0)
	if len(os.Args) < 2 {
		usage()
		return
	}
	var err error
	switch os.Args[1] {
	case "login":
		err = cmdLogin(os.Args[2:])
	case "logout":
		err = cmdLogout(os.Args[2:])
	case "register":
		err = cmdRegister(os.Args[2:])
	case "whoami":
		err = cmdWhoami(os.Args[2:])
	case "products":
		err = cmdProducts(os.Args[2:])
	case "cart":
		err = cmdCart(os.Args[2:])
	case "fav":
		err = cmdFav(os.Args[2:])
	case "orders":
		err = cmdOrders(os.Args[2:])
	case "checkout":
		err = cmdCheckout(os.Args[2:])
	case "pay":
		err = cmdPay(os.Args[2:])
	case "cancel":
		err = cmdCancel(os.Args[2:])
	case "complete":
		err = cmdComplete(os.Args[2:])
	case "profile":
		err = cmdProfile(os.Args[2:])
	default:
		usage()
		return
	}
	if err != nil {
		log.Fatal(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: mart <command> [flags]

commands:
  login      -email -password      authenticate and store the session
  logout                           clear the stored session
  register   -name -email -password
  whoami                           show the cached account
  products                         list the catalog
  cart       [list|add|rm|qty]     manage the cart
  fav        [list|toggle]         manage favorites
  orders     [list|show]           order history
  checkout   -method               create an order from the cart
  pay        -id                   simulate payment for an order
  cancel     -id                   cancel a pending order
  complete   -id                   mark a delivered order finished
  profile    [show|set]            account profile

config: ~/.dailymart/config.json, DAILYMART_SERVER / DAILYMART_CREDS_DB env`)
}

// withShop opens the credential store and hands a wired Shop to fn.
func withShop(fn func(ctx context.Context, s *shop.Shop) error) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	if cfg.Server == "" {
		return fmt.Errorf("no server configured: set DAILYMART_SERVER or %s", ConfigPath())
	}

	creds, err := shop.OpenCredentials(cfg.CredsDB)
	if err != nil {
		return err
	}
	defer func() {
		_ = creds.Close()
	}()

	s := shop.New(shop.Config{BaseURL: cfg.Server, UserAgent: "mart-cli"}, creds)
	return fn(context.Background(), s)
}

func cmdLogin(args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	_ = fs.Parse(args)
	if *email == "" || *password == "" {
		return fmt.Errorf("login: -email and -password required")
	}

	return withShop(func(ctx context.Context, s *shop.Shop) error {
		user, err := s.Login(ctx, *email, *password)
		if err != nil {
			return err
		}
		cfg, err := LoadConfig()
		if err != nil {
			return err
		}
		cfg.Email = *email
		if err := SaveConfig(cfg); err != nil {
			return err
		}
		fmt.Printf("logged in as %s (%s)\n", user.Name, user.Role)
		return nil
	})
}

func cmdLogout(args []string) error {
	fs := flag.NewFlagSet("logout", flag.ExitOnError)
	_ = fs.Parse(args)

	return withShop(func(ctx context.Context, s *shop.Shop) error {
		if err := s.Logout(ctx); err != nil {
			return err
		}
		fmt.Println("logged out")
		return nil
	})
}

func cmdRegister(args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	name := fs.String("name", "", "full name")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	_ = fs.Parse(args)
	if *name == "" || *email == "" || *password == "" {
		return fmt.Errorf("register: -name, -email and -password required")
	}

	return withShop(func(ctx context.Context, s *shop.Shop) error {
		if err := s.Register(ctx, *name, *email, *password); err != nil {
			return err
		}
		fmt.Println("registered; run 'mart login' to sign in")
		return nil
	})
}

func cmdWhoami(args []string) error {
	fs := flag.NewFlagSet("whoami", flag.ExitOnError)
	_ = fs.Parse(args)

	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	creds, err := shop.OpenCredentials(cfg.CredsDB)
	if err != nil {
		return err
	}
	defer func() {
		_ = creds.Close()
	}()

	ctx := context.Background()
	user, err := creds.User(ctx)
	if err != nil {
		return err
	}
	if user == nil {
		fmt.Println("not logged in")
		return nil
	}
	fmt.Printf("%s <%s> role=%s\n", user.Name, user.Email, user.Role)
	if user.Customer != nil && user.Customer.Address != "" {
		fmt.Printf("address: %s\n", user.Customer.Address)
	}
	return nil
}

func cmdProducts(args []string) error {
	fs := flag.NewFlagSet("products", flag.ExitOnError)
	_ = fs.Parse(args)

	return withShop(func(ctx context.Context, s *shop.Shop) error {
		products, err := s.Client().Products(ctx)
		if err != nil {
			return err
		}
		if len(products) == 0 {
			fmt.Println("no products")
			return nil
		}
		for _, p := range products {
			fmt.Printf("%d\t%s\tRp%.0f\tstok %d\n", p.ID, p.Name, p.Price, p.Stock)
		}
		return nil
	})
}
