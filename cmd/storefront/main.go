// cmd/storefront/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"vascomart-client/internal/authctx"
	"vascomart-client/internal/common/aws"
	"vascomart-client/internal/common/config"
	"vascomart-client/internal/common/database"
	commonhttp "vascomart-client/internal/common/http"
	"vascomart-client/internal/common/logger"
	"vascomart-client/internal/common/observability"
	"vascomart-client/internal/localstate"
	"vascomart-client/internal/models"
	"vascomart-client/internal/notify"
	"vascomart-client/internal/notify/alert"
	"vascomart-client/internal/session"
	"vascomart-client/internal/stomp"
	"vascomart-client/internal/storefront"
	"vascomart-client/internal/transport"
)

func main() {
	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	creds := authctx.NewKeyringStore(cfg.Local.KeyringService, cfg.Local.Dir)
	authCtx := authctx.NewSessionContext(creds, log)

	httpClient := commonhttp.NewClient(config.GetDuration(cfg.Services.Timeout))
	clients := storefront.NewClients(cfg.Services, httpClient, authCtx.Token, log)

	ctx := context.Background()

	switch os.Args[1] {
	case "login":
		runLogin(ctx, clients, authCtx)
	case "register":
		runRegister(ctx, clients)
	case "logout":
		authCtx.Logout()
		fmt.Println("Logged out.")
	case "products":
		runProducts(ctx, clients)
	case "add-product":
		runAddProduct(ctx, clients)
	case "order":
		runOrder(ctx, clients)
	case "orders":
		runOrders(ctx, clients)
	case "profile":
		runProfile(ctx, cfg, clients, authCtx)
	case "set-profile":
		runSetProfile(ctx, cfg, authCtx)
	case "watch":
		runWatch(cfg, zapLog, log)
	case "help":
		fallthrough
	default:
		help()
	}
}

func runLogin(ctx context.Context, clients *storefront.Clients, authCtx *authctx.SessionContext) {
	loginCmd := flag.NewFlagSet("login", flag.ExitOnError)
	username := loginCmd.String("username", "", "Account username")
	password := loginCmd.String("password", "", "Account password")
	loginCmd.Parse(os.Args[2:])

	if *username == "" || *password == "" {
		fmt.Println("Error: username and password are required for login.")
		loginCmd.Usage()
		os.Exit(1)
	}

	result, err := clients.Auth.Login(ctx, models.Credentials{
		Username: *username,
		Password: *password,
	})
	if err != nil {
		fmt.Printf("Login failed: %v\n", err)
		os.Exit(1)
	}
	if err := authCtx.Login(*username, result.Token); err != nil {
		fmt.Printf("Failed to persist credentials: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Logged in as %s\n", *username)
}

func runRegister(ctx context.Context, clients *storefront.Clients) {
	registerCmd := flag.NewFlagSet("register", flag.ExitOnError)
	username := registerCmd.String("username", "", "Account username")
	password := registerCmd.String("password", "", "Account password")
	email := registerCmd.String("email", "", "Account email")
	registerCmd.Parse(os.Args[2:])

	if *username == "" || *password == "" {
		fmt.Println("Error: username and password are required for register.")
		registerCmd.Usage()
		os.Exit(1)
	}

	user, err := clients.Auth.Register(ctx, models.Credentials{
		Username: *username,
		Password: *password,
		Email:    *email,
	})
	if err != nil {
		fmt.Printf("Registration failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Registered %s (id %s). You can now log in.\n", user.Username, user.ID)
}

func runProducts(ctx context.Context, clients *storefront.Clients) {
	products, err := clients.Products.List(ctx)
	if err != nil {
		fmt.Printf("Failed to list products: %v\n", err)
		os.Exit(1)
	}
	if len(products) == 0 {
		fmt.Println("No products available.")
		return
	}
	for _, p := range products {
		fmt.Printf("%4d  %-30s $%.2f  (%d in stock)\n", p.ID, p.Name, p.Price, p.Quantity)
	}
}

func runAddProduct(ctx context.Context, clients *storefront.Clients) {
	addCmd := flag.NewFlagSet("add-product", flag.ExitOnError)
	name := addCmd.String("name", "", "Product name")
	description := addCmd.String("description", "", "Product description")
	price := addCmd.Float64("price", 0, "Unit price")
	quantity := addCmd.Int("quantity", 0, "Stock quantity")
	addCmd.Parse(os.Args[2:])

	if *name == "" {
		fmt.Println("Error: name is required for add-product.")
		addCmd.Usage()
		os.Exit(1)
	}

	created, err := clients.Products.Create(ctx, models.ProductCreate{
		Name:        *name,
		Description: *description,
		Price:       *price,
		Quantity:    *quantity,
	})
	if err != nil {
		fmt.Printf("Failed to add product: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Added product %s (id %d)\n", created.Name, created.ID)
}

// runOrder parses -items as productId:quantity pairs, e.g.
// "3:2,7:1", and places one order for them.
func runOrder(ctx context.Context, clients *storefront.Clients) {
	orderCmd := flag.NewFlagSet("order", flag.ExitOnError)
	items := orderCmd.String("items", "", "Comma-separated productId:quantity pairs")
	orderCmd.Parse(os.Args[2:])

	if *items == "" {
		fmt.Println("Error: items is required for order.")
		orderCmd.Usage()
		os.Exit(1)
	}

	request, err := parseOrderItems(*items)
	if err != nil {
		fmt.Printf("Invalid items: %v\n", err)
		os.Exit(1)
	}

	placed, err := clients.Orders.Place(ctx, request)
	if err != nil {
		fmt.Printf("Failed to place order: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Order #%d placed with %d item(s)\n", placed.ID, len(request.Products))
}

func parseOrderItems(items string) (models.OrderRequest, error) {
	var request models.OrderRequest
	for _, pair := range strings.Split(items, ",") {
		var productID, quantity int
		if _, err := fmt.Sscanf(strings.TrimSpace(pair), "%d:%d", &productID, &quantity); err != nil {
			return request, fmt.Errorf("expected productId:quantity, got %q", pair)
		}
		request.Products = append(request.Products, models.OrderItem{
			ProductID: productID,
			Quantity:  quantity,
		})
	}
	return request, nil
}

func runOrders(ctx context.Context, clients *storefront.Clients) {
	orders, err := clients.Orders.ListMine(ctx)
	if err != nil {
		fmt.Printf("Failed to list orders: %v\n", err)
		os.Exit(1)
	}
	if len(orders) == 0 {
		fmt.Println("No orders yet.")
		return
	}
	for _, o := range orders {
		fmt.Printf("Order #%d  %d item(s)  %s\n", o.ID, len(o.Products), o.CreatedAt)
	}
}

func runProfile(ctx context.Context, cfg *config.Config, clients *storefront.Clients, authCtx *authctx.SessionContext) {
	if !authCtx.LoggedIn() {
		fmt.Println("Not logged in.")
		os.Exit(1)
	}

	user, err := clients.Users.Me(ctx)
	if err != nil {
		fmt.Printf("Failed to fetch account: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Username: %s\n", user.Username)
	if user.Email != "" {
		fmt.Printf("Email:    %s\n", user.Email)
	}

	store, err := localstate.NewProfileStore(cfg.Local.ProfileDBPath())
	if err != nil {
		fmt.Printf("Failed to open profile store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	profile, err := store.Load(ctx, authCtx.Username())
	if err != nil {
		fmt.Printf("Failed to load profile: %v\n", err)
		os.Exit(1)
	}
	if profile.Bio != "" {
		fmt.Printf("Bio:      %s\n", profile.Bio)
	}
	if profile.Nationality != "" {
		fmt.Printf("Country:  %s\n", profile.Nationality)
	}
	if len(profile.Interests) > 0 {
		fmt.Printf("Interests: %s\n", strings.Join(profile.Interests, ", "))
	}
}

func runSetProfile(ctx context.Context, cfg *config.Config, authCtx *authctx.SessionContext) {
	if !authCtx.LoggedIn() {
		fmt.Println("Not logged in.")
		os.Exit(1)
	}

	profileCmd := flag.NewFlagSet("set-profile", flag.ExitOnError)
	bio := profileCmd.String("bio", "", "Short bio")
	nationality := profileCmd.String("nationality", "", "Nationality")
	interests := profileCmd.String("interests", "", "Comma-separated interests")
	profileCmd.Parse(os.Args[2:])

	store, err := localstate.NewProfileStore(cfg.Local.ProfileDBPath())
	if err != nil {
		fmt.Printf("Failed to open profile store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	username := authCtx.Username()
	profile, err := store.Load(ctx, username)
	if err != nil {
		fmt.Printf("Failed to load profile: %v\n", err)
		os.Exit(1)
	}

	if *bio != "" {
		profile.Bio = *bio
	}
	if *nationality != "" {
		profile.Nationality = *nationality
	}
	if *interests != "" {
		profile.Interests = nil
		for _, interest := range strings.Split(*interests, ",") {
			if trimmed := strings.TrimSpace(interest); trimmed != "" {
				profile.Interests = append(profile.Interests, trimmed)
			}
		}
	}

	if err := store.Save(ctx, username, profile); err != nil {
		fmt.Printf("Failed to save profile: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Profile saved.")
}

// runWatch connects to the order broker and streams notifications to
// the terminal until interrupted.
func runWatch(cfg *config.Config, zapLog *zap.Logger, log logger.Logger) {
	obs := observability.New("storefront")
	defer obs.Shutdown()

	ctx := context.Background()

	store := notify.NewStore(cfg.Notifications.Capacity, log)
	dispatcher := buildDispatcher(ctx, cfg, zapLog, log)

	var history *notify.RedisHistory
	if cfg.History.Enabled {
		redisClient, err := database.NewRedis(cfg.History.Redis)
		if err != nil {
			zapLog.Fatal("redis client failed", zap.Error(err))
		}
		defer redisClient.Close()

		if err := redisClient.Ping(ctx); err != nil {
			zapLog.Warn("history sink unreachable, continuing without it", zap.Error(err))
		} else {
			history = notify.NewRedisHistory(redisClient.Client, cfg.History.Key, cfg.Notifications.Capacity)
		}
	}

	dialer := transport.NewFallbackDialer(
		config.GetDuration(cfg.Broker.ConnectTimeout),
		cfg.Broker.LongPollFallback,
		log,
	)
	client := stomp.NewClient(stomp.Options{
		Endpoint:          cfg.Broker.URL,
		Dialer:            dialer,
		ReconnectDelay:    config.GetDuration(cfg.Broker.ReconnectDelay),
		HeartbeatIncoming: config.GetDuration(cfg.Broker.HeartbeatIncoming),
		HeartbeatOutgoing: config.GetDuration(cfg.Broker.HeartbeatOutgoing),
		ConnectTimeout:    config.GetDuration(cfg.Broker.ConnectTimeout),
		Logger:            log,
	})

	sess := session.New(session.Options{
		Broker:     session.NewStompBroker(client),
		Topic:      cfg.Broker.Topic,
		Store:      store,
		Normalizer: notify.NewNormalizer(),
		Dispatcher: dispatcher,
		History:    history,
		Logger:     log,
		Obs:        obs,
		OnNotification: func(n models.Notification) {
			fmt.Printf("[%s] %s: %s\n", n.Type, n.Title, n.Message)
		},
		OnStatus: func(s session.Status) {
			fmt.Printf("-- connection %s --\n", strings.ToLower(s.String()))
		},
	})

	manager := session.NewManager()
	manager.Activate(sess)

	if cfg.Metrics.Enabled {
		go func() {
			mux := http.NewServeMux()
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				json.NewEncoder(w).Encode(map[string]string{
					"status": "healthy",
					"time":   time.Now().Format(time.RFC3339),
				})
			})
			mux.Handle("/metrics", promhttp.Handler())
			zapLog.Info("Metrics server listening", zap.String("address", cfg.Metrics.Address))
			if err := http.ListenAndServe(cfg.Metrics.Address, mux); err != nil {
				zapLog.Error("Metrics server failed", zap.Error(err))
			}
		}()
	}

	zapLog.Info("Watching for order notifications",
		zap.String("broker", cfg.Broker.URL),
		zap.String("topic", cfg.Broker.Topic),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping session...")
	manager.Shutdown()
	zapLog.Info("Storefront client stopped gracefully")
}

// buildDispatcher assembles the enabled alert channels. AWS-backed
// channels are skipped with a warning when their clients cannot be
// built, the pipeline keeps running without them.
func buildDispatcher(ctx context.Context, cfg *config.Config, zapLog *zap.Logger, log logger.Logger) *alert.Dispatcher {
	var channels []alert.Channel

	if cfg.Notifications.Desktop.Enabled {
		channels = append(channels, alert.NewDesktop(cfg.Notifications.Desktop.Icon))
	}

	if cfg.Notifications.Email.Enabled {
		sesClient, err := aws.NewSESClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Warn("SES client failed, email alerts disabled", zap.Error(err))
		} else {
			channels = append(channels, alert.NewEmail(sesClient,
				cfg.Notifications.Email.FromEmail,
				cfg.Notifications.Email.ToEmail,
			))
		}
	}

	if cfg.Notifications.SMS.Enabled {
		snsClient, err := aws.NewSNSClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Warn("SNS client failed, SMS alerts disabled", zap.Error(err))
		} else {
			channels = append(channels, alert.NewSMS(snsClient, cfg.Notifications.SMS.PhoneNumber))
		}
	}

	return alert.NewDispatcher(log, channels...)
}

func help() {
	fmt.Print(`
Usage: storefront <command> [flags]

Commands:
  login        Log in and store the session token
  register     Create a new account
  logout       Clear the stored session token
  products     List the product catalog
  add-product  Add a product to the catalog
  order        Place an order (-items productId:quantity,...)
  orders       List your orders
  profile      Show your account and local profile
  set-profile  Update your local profile
  watch        Stream live order notifications to the terminal
  help         Show this help message

Examples:
  storefront login -username alice -password secret
  storefront order -items 3:2,7:1
  storefront watch

Use 'storefront <command> -h' for more information about a command.
`)
}
