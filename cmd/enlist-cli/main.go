// Command enlist-cli runs the machine enlistment form as an interactive
// terminal session against an inventory backend.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-enlist"
	"github.com/goliatone/go-enlist/pkg/form"
	"github.com/goliatone/go-enlist/pkg/notify"
	"github.com/goliatone/go-enlist/pkg/power"
)

type config struct {
	APIURL  string `yaml:"api_url"`
	Catalog string `yaml:"catalog"`
}

func main() {
	var (
		configFlag  = flag.String("config", "", "Optional YAML config file (api_url, catalog)")
		apiFlag     = flag.String("api", "http://localhost:5240/api", "Inventory backend base URL")
		catalogFlag = flag.String("catalog", "", "Optional OpenAPI document describing power types")
		timeoutFlag = flag.Duration("timeout", 30*time.Second, "Reference data load timeout")
	)
	flag.Parse()

	cfg := config{APIURL: *apiFlag, Catalog: *catalogFlag}
	if *configFlag != "" {
		data, err := os.ReadFile(*configFlag)
		if err != nil {
			log.Fatalf("read config: %v", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("parse config: %v", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cat, err := resolveCatalog(ctx, cfg.Catalog)
	if err != nil {
		log.Fatalf("load power type catalog: %v", err)
	}

	backend, err := newClient(cfg.APIURL, http.DefaultClient)
	if err != nil {
		log.Fatalf("configure backend client: %v", err)
	}

	ctrl, err := enlist.NewController(backend, cat, backend,
		form.WithNotifier(notify.NotifierFuncs{
			OnSuccess: func(message string) { fmt.Println(message) },
			OnFailure: func(message string) { fmt.Fprintln(os.Stderr, message) },
		}),
	)
	if err != nil {
		log.Fatalf("build form controller: %v", err)
	}
	defer ctrl.Close()

	ctrl.Activate(ctx)

	waitCtx, waitCancel := context.WithTimeout(ctx, *timeoutFlag)
	defer waitCancel()
	fmt.Println("Loading reference data...")
	if err := ctrl.WaitReady(waitCtx); err != nil {
		log.Fatalf("reference data did not load: %v", err)
	}

	if err := runForm(ctx, ctrl); err != nil {
		log.Fatalf("enlist: %v", err)
	}
}

func resolveCatalog(ctx context.Context, path string) (power.Catalog, error) {
	if path == "" {
		return enlist.EmbeddedCatalog()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return enlist.CatalogFromOpenAPI(ctx, data)
}
