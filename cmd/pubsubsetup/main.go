package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"cloud.google.com/go/pubsub"
)

var (
	projectID     = flag.String("project", "eventala", "pubsub project id")
	topicID       = flag.String("topic", "shared.eventala.ProfileEvents", "topic to create")
	subscriptions = flag.String("subscriptions", "", "comma-separated subscription ids to attach to the topic")
)

func main() {
	flag.Parse()

	ctx := context.Background()
	client, err := pubsub.NewClient(ctx, *projectID)
	if err != nil {
		log.Panicf("Unable to create client to project %q: %s", *projectID, err)
	}
	defer client.Close()

	topic, err := client.CreateTopic(ctx, *topicID)
	if err != nil && !strings.Contains(err.Error(), "Topic already exists") {
		log.Panicf("Unable to create topic %s for project %s: %v", *topicID, *projectID, err)
	} else if err != nil {
		topic = client.Topic(*topicID)
	}
	fmt.Printf("topic ready: %s\n", topic.ID())

	if *subscriptions == "" {
		return
	}
	for _, subscriptionID := range strings.Split(*subscriptions, ",") {
		subscriptionID = strings.TrimSpace(subscriptionID)
		if subscriptionID == "" {
			continue
		}
		_, err := client.CreateSubscription(ctx, subscriptionID, pubsub.SubscriptionConfig{Topic: topic})
		if err != nil && !strings.Contains(err.Error(), "Subscription already exists") {
			log.Panicf("Unable to create subscription %s on topic %s: %v", subscriptionID, *topicID, err)
		}
		fmt.Printf("subscription ready: %s\n", subscriptionID)
	}
}
