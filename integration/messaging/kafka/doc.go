// Package kafka publishes session timeouts to a Kafka topic so that other
// services can react to logouts.
//
//	var cfg kafka.Config
//	config.MustLoad(&cfg) // KAFKA_BROKERS, KAFKA_TIMEOUT_TOPIC
//
//	writer := kafka.NewWriter(cfg)
//	defer writer.Close()
//	manager.Notifier().Subscribe(kafka.NewPublisher(writer))
//
// Messages are keyed by session key, carry the timeout reason in a "reason"
// header and a JSON body with the session key, user id, resolved identity,
// reason, snapshot and time.
package kafka
