// Package mongo connects to MongoDB and provides the session identity resolver
// and timeout audit log backed by it.
//
// New applies the pool and retry settings from Config and pings the primary
// until it answers, which absorbs Atlas cold starts:
//
//	client, err := mongo.New(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Disconnect(ctx)
//
//	db := client.Database(cfg.Database)
//	manager, err := session.NewManager(store,
//		session.WithIdentityResolver(mongo.NewIdentityResolver(db.Collection("users"))),
//	)
//	manager.Notifier().Subscribe(mongo.NewAuditLog(db.Collection("session_timeouts")))
//
// Users are matched on _id. A user id that is a valid ObjectID hex string
// matches both an ObjectID and a string _id.
//
// Configuration is read from the environment:
//
//	MONGODB_URL                 (required)
//	MONGODB_DATABASE            (default: app)
//	MONGODB_CONNECT_TIMEOUT     (default: 10s)
//	MONGODB_MAX_POOL_SIZE       (default: 100)
//	MONGODB_MIN_POOL_SIZE       (default: 1)
//	MONGODB_MAX_CONN_IDLE_TIME  (default: 300s)
//	MONGODB_RETRY_WRITES        (default: true)
//	MONGODB_RETRY_READS         (default: true)
//	MONGODB_RETRY_ATTEMPTS      (default: 3)
//	MONGODB_RETRY_INTERVAL      (default: 5s)
package mongo
