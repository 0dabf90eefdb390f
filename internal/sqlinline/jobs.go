package sqlinline

// QClaimPendingJobs atomically flips up to $1 due pending jobs to processing
// and returns them. The FOR UPDATE SKIP LOCKED subquery guarantees two
// concurrent workers never claim the same row.
const QClaimPendingJobs = `--sql 88709d3d-cc6e-4da3-8c2e-96fe58bae550
with due as (
    select id
    from jobs
    where status = 'pending'
      and scheduled_at <= now()
    order by scheduled_at asc
    for update skip locked
    limit $1
),
claimed as (
    update jobs
    set status = 'processing',
        started_at = now(),
        attempts = attempts + 1,
        updated_at = now()
    where id in (select id from due)
    returning id, user_id, type, payload, status, attempts, idempotency_key,
        coalesce(last_error, ''), scheduled_at, started_at, created_at
)
select * from claimed;
`

const QInsertJob = `--sql e7c4ce91-b80e-471d-8183-8408f332953e
insert into jobs (id, user_id, type, payload, status, idempotency_key, scheduled_at)
values ($1, $2, $3, $4, 'pending', $5, now());
`

const QMarkJobCompleted = `--sql 33a21dba-280a-430d-bb09-04790dc2ca83
update jobs
set status = 'completed',
    completed_at = now(),
    result = $2,
    updated_at = now()
where id = $1;
`

const QMarkJobFailed = `--sql 9d8842d3-2acd-4d5f-8596-c9d569854adb
update jobs
set status = 'failed',
    completed_at = now(),
    last_error = $2,
    updated_at = now()
where id = $1;
`

const QScheduleJobRetry = `--sql 0343e685-57e5-4f1c-acb5-8c131780ac3c
update jobs
set status = 'pending',
    started_at = null,
    scheduled_at = $3,
    last_error = $2,
    updated_at = now()
where id = $1;
`

const QUserHasJobs = `--sql 042d9cc1-578b-4389-8dc2-e256f1cb0a14
select exists (select 1 from jobs where user_id = $1);
`
