package main

import (
    "context"
    "log"
    "time"

    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"

    "photolibrary/internal/config"
    "photolibrary/internal/database"
    "photolibrary/internal/handler"
    "photolibrary/internal/queue"
    "photolibrary/internal/realtime"
    "photolibrary/internal/repository"
    "photolibrary/internal/router"
    "photolibrary/internal/storage"
)

func main() {
    // .env is optional; real deployments set the environment directly.
    _ = godotenv.Load()
    cfg := config.Load()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database open failed: %v", err)
    }
    defer func() { _ = db.Close() }()

    ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
    if err := database.Migrate(ctx, db); err != nil {
        cancel()
        log.Fatalf("migrate failed: %v", err)
    }
    cancel()

    // Blob store is optional; without it photo and avatar uploads answer
    // with an explicit "not configured" error.
    var store storage.ObjectStore
    if cfg.StoreEndpoint != "" {
        s, err := storage.NewMinioStore(cfg.StoreEndpoint, cfg.StoreAccessKey, cfg.StoreSecretKey, cfg.StoreBucket, cfg.StorePublicURL, cfg.StoreUseSSL)
        if err != nil {
            log.Fatalf("object store init failed: %v", err)
        }
        store = s
    } else {
        log.Println("object store not configured; uploads disabled")
    }

    // Redis is optional too; a nil client turns the response cache into a
    // pass-through.
    rdb := config.NewRedisClient()
    cacheCfg := config.LoadCacheConfig()

    users := repository.NewUserRepo(db)
    tokens := repository.NewTokenRepo(db)
    libraries := repository.NewLibraryRepo(db)
    members := repository.NewMemberRepo(db)
    photos := repository.NewPhotoRepo(db)
    messages := repository.NewMessageRepo(db)

    hub := realtime.NewHub()
    sock := realtime.NewSocketHandler(cfg.JWTSecret, hub, members, photos, messages, libraries)

    e := echo.New()
    e.HideBanner = true

    router.RegisterRoutes(e)
    router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret)
    router.RegisterLibraries(e, handler.NewLibraryHandler(libraries, members, users), cfg.JWTSecret)
    router.RegisterPhotos(e, handler.NewPhotoHandler(photos, members, libraries, users, store, rdb, cacheCfg.Prefix), cfg.JWTSecret, cacheCfg, rdb)
    router.RegisterMessages(e, handler.NewMessageHandler(messages, members, photos, libraries, hub), cfg.JWTSecret)
    router.RegisterProfile(e, handler.NewProfileHandler(users, store), cfg.JWTSecret)
    router.RegisterSocket(e, sock)

    // Activity consumer runs for the life of the process and reconnects on
    // broker failures.
    go func() {
        if err := queue.StartActivityConsumer(); err != nil {
            log.Printf("activity consumer stopped: %v", err)
        }
    }()

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s)", addr, cfg.Env)
    if err := e.Start(addr); err != nil {
        log.Fatal(err)
    }
}
