package config

type WorkerKeyStruct struct {
	PersistAnalyticsQueue string
	ResultEventsQueue     string
}

var WorkerKey = &WorkerKeyStruct{
	PersistAnalyticsQueue: "persist_analytics_queue",
	ResultEventsQueue:     "test.result.submitted",
}
