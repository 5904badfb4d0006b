// Package redis connects to Redis through go-redis and provides Store, a
// store.Repository that keeps job and batch snapshots as JSON.
//
//	comp := redis.NewComponent(cfg)
//	_ = comp.Start(ctx)
//	jobs := redis.NewStore[*job.Job](comp.Client(), "job")
package redis
