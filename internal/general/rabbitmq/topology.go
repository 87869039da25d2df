package rabbitmq

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"caby/internal/general/contracts"
)

func declareTopology(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(contracts.ExchangeRideTopic, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", contracts.ExchangeRideTopic, err)
	}

	if _, err := ch.QueueDeclare(contracts.QueueReceiptEmails, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", contracts.QueueReceiptEmails, err)
	}

	if err := ch.QueueBind(contracts.QueueReceiptEmails, contracts.RouteReceiptRequested, contracts.ExchangeRideTopic, false, nil); err != nil {
		return fmt.Errorf("bind queue %s to %s: %w", contracts.QueueReceiptEmails, contracts.ExchangeRideTopic, err)
	}

	return nil
}
