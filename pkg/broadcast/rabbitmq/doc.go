// Package rabbitmq publishes batch events to a durable RabbitMQ topic
// exchange, using the event topic as the routing key. Subscribers bind queues
// with patterns such as hedera.batch.* or hedera.batch.create.
//
// NewWithAMQP owns the connection and transparently redials after broker
// restarts; New accepts any Channel for tests or caller-managed connections.
package rabbitmq
